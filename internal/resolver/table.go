package resolver

// companyToTicker maps normalized company names to their canonical tickers.
// Keys must already be in normalized form (lowercase, suffixes stripped).
var companyToTicker = map[string]string{
	"apple":              "AAPL",
	"microsoft":          "MSFT",
	"google":             "GOOGL",
	"alphabet":           "GOOGL",
	"amazon":             "AMZN",
	"tesla":              "TSLA",
	"meta":               "META",
	"meta platforms":     "META",
	"facebook":           "META",
	"netflix":            "NFLX",
	"nvidia":             "NVDA",
	"intel":              "INTC",
	"amd":                "AMD",
	"advanced micro devices": "AMD",
	"ibm":                "IBM",
	"oracle":             "ORCL",
	"salesforce":         "CRM",
	"adobe":              "ADBE",
	"paypal":             "PYPL",
	"disney":             "DIS",
	"walt disney":        "DIS",
	"walmart":            "WMT",
	"boeing":             "BA",
	"jpmorgan":           "JPM",
	"jpmorgan chase":     "JPM",
	"visa":               "V",
	"mastercard":         "MA",
	"coca cola":          "KO",
	"cocacola":           "KO",
	"pepsi":              "PEP",
	"pepsico":            "PEP",
	"mcdonalds":          "MCD",
	"nike":               "NKE",
	"starbucks":          "SBUX",
	"uber":               "UBER",
	"lyft":               "LYFT",
	"airbnb":             "ABNB",
	"zoom":               "ZM",
	"spotify":            "SPOT",
	"snap":               "SNAP",
	"pinterest":          "PINS",
	"block":              "SQ",
	"shopify":            "SHOP",
	"palantir":           "PLTR",
	"coinbase":           "COIN",
	"robinhood":          "HOOD",
	"berkshire hathaway": "BRK-B",
	"johnson johnson":    "JNJ",
	"exxon":              "XOM",
	"exxon mobil":        "XOM",
	"chevron":            "CVX",
	"pfizer":             "PFE",
	"moderna":            "MRNA",
	"ford":               "F",
	"general motors":     "GM",
	"verizon":            "VZ",
	"qualcomm":           "QCOM",
	"broadcom":           "AVGO",
	"cisco":              "CSCO",
	"dell":               "DELL",
	"sony":               "SONY",
	"toyota":             "TM",
	"alibaba":            "BABA",
	"baidu":              "BIDU",
	"general electric":   "GE",
	"goldman sachs":      "GS",
	"morgan stanley":     "MS",
	"bank of america":    "BAC",
	"wells fargo":        "WFC",
	"citigroup":          "C",
	"american express":   "AXP",
	"home depot":         "HD",
	"lowes":              "LOW",
	"target":             "TGT",
	"costco":             "COST",
	"fedex":              "FDX",
	"caterpillar":        "CAT",
	"honeywell":          "HON",
	"lockheed martin":    "LMT",
	"delta air lines":    "DAL",
	"marriott":           "MAR",
	"hilton":             "HLT",
}

// tickerShapeStopWords are uppercase 1-5 letter tokens that match the ticker
// shape but are almost always ordinary English words in a query.
var tickerShapeStopWords = map[string]bool{
	"A": true, "I": true, "AM": true, "AN": true, "AND": true, "ARE": true,
	"AS": true, "AT": true, "BE": true, "BUT": true, "BUY": true, "BY": true,
	"CAN": true, "CHECK": true, "DID": true, "DO": true, "FIND": true,
	"FOR": true, "FROM": true, "GET": true, "GIVE": true, "GO": true,
	"GOOD": true, "HAS": true, "HAVE": true, "HE": true, "HER": true,
	"HIS": true, "HOLD": true, "HOW": true, "IF": true, "IN": true,
	"IS": true, "IT": true, "ITS": true, "JUST": true, "KNOW": true,
	"LET": true, "LIKE": true, "LONG": true, "LOOK": true, "MAKE": true,
	"MANY": true, "ME": true, "MUCH": true, "MY": true, "NEW": true,
	"NO": true, "NOT": true, "NOW": true, "OF": true, "OLD": true,
	"ON": true, "ONE": true, "OR": true, "OUR": true, "OUT": true,
	"OVER": true, "PRICE": true, "PUT": true, "SAY": true, "SEE": true,
	"SELL": true, "SHE": true, "SHOW": true, "SO": true, "SOME": true,
	"STOCK": true, "SUCH": true, "TAKE": true, "TELL": true, "THAN": true,
	"THAT": true, "THE": true, "THEM": true, "THEY": true, "THIS": true,
	"TIME": true, "TO": true, "TOO": true, "TWO": true, "UP": true,
	"US": true, "USE": true, "VERY": true, "WANT": true, "WAS": true,
	"WAY": true, "WE": true, "WELL": true, "WERE": true, "WHAT": true,
	"WHEN": true, "WHO": true, "WILL": true, "WITH": true, "YOU": true,
}

// queryStopWords are lowercase words never treated as company-name candidates.
var queryStopWords = map[string]bool{
	"about": true, "analyse": true, "analysis": true, "analyze": true,
	"and": true, "any": true, "are": true, "buy": true, "check": true,
	"companies": true, "company": true, "compare": true, "could": true,
	"current": true, "financial": true, "financials": true, "for": true,
	"give": true, "good": true, "hold": true, "how": true, "info": true,
	"information": true, "invest": true, "investment": true, "latest": true,
	"like": true, "look": true, "market": true, "news": true, "now": true,
	"outlook": true, "performance": true, "please": true, "price": true,
	"prices": true, "recommend": true, "recommendation": true,
	"research": true, "sell": true, "share": true, "shares": true,
	"shall": true, "should": true, "show": true, "some": true, "stock": true,
	"stocks": true, "tell": true, "that": true, "the": true, "think": true,
	"this": true, "today": true, "trend": true, "value": true, "week": true,
	"what": true, "whats": true, "where": true, "which": true, "will": true,
	"with": true, "would": true, "you": true, "your": true,
}
