package rates

// isoCurrency is one ISO 4217 entry used to resolve the numeric codes
// the fiat rate source reports into alpha codes and display names.
type isoCurrency struct {
	Alpha string
	Name  string
}

// Covers the currencies the fiat source actually quotes against the
// hryvnia. Entries the source returns outside this table are skipped
// during refresh.
var iso4217 = map[int]isoCurrency{
	8:   {"ALL", "Albanian lek"},
	12:  {"DZD", "Algerian dinar"},
	36:  {"AUD", "Australian dollar"},
	50:  {"BDT", "Bangladeshi taka"},
	51:  {"AMD", "Armenian dram"},
	124: {"CAD", "Canadian dollar"},
	144: {"LKR", "Sri Lankan rupee"},
	156: {"CNY", "Chinese yuan"},
	203: {"CZK", "Czech koruna"},
	208: {"DKK", "Danish krone"},
	233: {"EEK", "Estonian kroon"},
	246: {"FIM", "Finnish markka"},
	344: {"HKD", "Hong Kong dollar"},
	348: {"HUF", "Hungarian forint"},
	352: {"ISK", "Icelandic krona"},
	356: {"INR", "Indian rupee"},
	360: {"IDR", "Indonesian rupiah"},
	376: {"ILS", "Israeli new shekel"},
	392: {"JPY", "Japanese yen"},
	398: {"KZT", "Kazakhstani tenge"},
	410: {"KRW", "South Korean won"},
	414: {"KWD", "Kuwaiti dinar"},
	458: {"MYR", "Malaysian ringgit"},
	484: {"MXN", "Mexican peso"},
	498: {"MDL", "Moldovan leu"},
	554: {"NZD", "New Zealand dollar"},
	578: {"NOK", "Norwegian krone"},
	608: {"PHP", "Philippine peso"},
	634: {"QAR", "Qatari riyal"},
	682: {"SAR", "Saudi riyal"},
	702: {"SGD", "Singapore dollar"},
	710: {"ZAR", "South African rand"},
	752: {"SEK", "Swedish krona"},
	756: {"CHF", "Swiss franc"},
	764: {"THB", "Thai baht"},
	784: {"AED", "United Arab Emirates dirham"},
	818: {"EGP", "Egyptian pound"},
	826: {"GBP", "Pound sterling"},
	840: {"USD", "US Dollar"},
	933: {"BYN", "Belarusian ruble"},
	944: {"AZN", "Azerbaijani manat"},
	946: {"RON", "Romanian leu"},
	949: {"TRY", "Turkish lira"},
	975: {"BGN", "Bulgarian lev"},
	978: {"EUR", "Euro"},
	980: {"UAH", "Ukrainian hryvnia"},
	981: {"GEL", "Georgian lari"},
	985: {"PLN", "Polish zloty"},
	986: {"BRL", "Brazilian real"},
}

// lookupISO resolves a numeric ISO 4217 code.
func lookupISO(num int) (isoCurrency, bool) {
	c, ok := iso4217[num]
	return c, ok
}
