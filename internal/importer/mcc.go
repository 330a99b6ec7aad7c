package importer

import "strings"

// OtherCategory labels transactions whose merchant category code is
// missing or unknown.
const OtherCategory = "Other"

// mccCategories maps four-digit merchant category codes to display
// labels. Only the codes the known bank exports actually emit are
// listed; anything else falls back to OtherCategory.
var mccCategories = map[string]string{
	"0742": "Veterinary services",
	"0780": "Landscaping and gardening",
	"3000": "Airlines",
	"4011": "Railways",
	"4111": "Local commuter transport",
	"4112": "Passenger railways",
	"4121": "Taxi and ride services",
	"4131": "Bus lines",
	"4411": "Cruise lines",
	"4511": "Air carriers",
	"4722": "Travel agencies",
	"4812": "Phones and telecom equipment",
	"4814": "Telecommunication services",
	"4816": "Computer network services",
	"4829": "Money transfers",
	"4899": "Cable and other pay television",
	"4900": "Utilities",
	"5192": "Books and newspapers",
	"5200": "Home supply stores",
	"5261": "Garden supply stores",
	"5311": "Department stores",
	"5331": "Variety stores",
	"5399": "General merchandise",
	"5411": "Supermarkets and groceries",
	"5422": "Meat markets",
	"5441": "Candy and confectionery",
	"5451": "Dairy products",
	"5462": "Bakeries",
	"5499": "Food stores",
	"5511": "Car dealers",
	"5541": "Service stations",
	"5651": "Clothing stores",
	"5661": "Shoe stores",
	"5691": "Clothing, general",
	"5712": "Furniture stores",
	"5722": "Household appliances",
	"5732": "Electronics stores",
	"5734": "Computer software stores",
	"5735": "Record stores",
	"5812": "Restaurants",
	"5813": "Bars and cafes",
	"5814": "Fast food",
	"5912": "Pharmacies",
	"5921": "Beer, wine and liquor",
	"5941": "Sporting goods",
	"5942": "Book stores",
	"5945": "Toys and games",
	"5947": "Gift shops",
	"5977": "Cosmetics",
	"5983": "Fuel dealers",
	"5995": "Pet shops",
	"5999": "Specialty retail",
	"6010": "Cash withdrawals",
	"6011": "ATM withdrawals",
	"6012": "Financial institutions",
	"6051": "Quasi cash",
	"6211": "Securities and brokers",
	"6300": "Insurance",
	"6536": "Money transfers, intrabank",
	"6537": "Money transfers, interbank",
	"6538": "Money transfers, inbound",
	"7011": "Hotels and lodging",
	"7230": "Beauty and barber shops",
	"7298": "Health and beauty spas",
	"7372": "Computer services",
	"7399": "Business services",
	"7512": "Car rental",
	"7523": "Parking",
	"7542": "Car washes",
	"7832": "Cinemas",
	"7922": "Theater and concerts",
	"7941": "Sports clubs",
	"7994": "Video game arcades",
	"7995": "Betting and lotteries",
	"7997": "Gyms and membership clubs",
	"8011": "Doctors",
	"8021": "Dentists",
	"8062": "Hospitals",
	"8071": "Medical laboratories",
	"8099": "Health services",
	"8211": "Schools",
	"8220": "Colleges and universities",
	"8299": "Educational services",
	"8398": "Charitable organizations",
	"8999": "Professional services",
	"9311": "Tax payments",
	"9399": "Government services",
	"9402": "Postal services",
}

// LookupMCC resolves a merchant category code to a display label.
// Codes are zero-padded to four digits before lookup; empty or
// unknown codes resolve to OtherCategory.
func LookupMCC(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return OtherCategory
	}
	if len(code) < 4 {
		code = strings.Repeat("0", 4-len(code)) + code
	}
	if label, ok := mccCategories[code]; ok {
		return label
	}
	return OtherCategory
}
