package seed

// City is a weighted origin or destination. PassengerModifier scales the
// drawn passenger count for the route.
type City struct {
	Name              string
	Weight            int
	PassengerModifier float64
}

var Airlines = []string{
	"6E", "UK", "AI", "SG", "IX", "I5", "G8", "QP", "2T", "S5",
	"TG", "EK", "QR", "BA", "LH", "SQ", "CX", "MH", "AK", "FD",
}

var DomesticCities = []City{
	{"DELHI", 15, 1.0},
	{"MUMBAI", 14, 0.97},
	{"BENGALURU", 13, 0.95},
	{"CHENNAI", 12, 0.93},
	{"PUNE", 9, 0.85},
	{"AHMEDABAD", 8, 0.8},
	{"KOCHI", 7, 0.70},
	{"GOA", 7, 0.85},
	{"JAIPUR", 6, 0.65},
	{"LUCKNOW", 6, 0.65},
	{"TIRUPATI", 6, 0.6},
	{"COIMBATORE", 5, 0.6},
	{"BHUBANESHWAR", 5, 0.6},
	{"CHANDIGARH", 5, 0.65},
	{"INDORE", 4, 0.4},
	{"GUWAHATI", 4, 0.3},
	{"VISHAKHAPATNAM", 3, 0.5},
	{"THIRUVANANTHAPURAM", 3, 0.4},
	{"VARANASI", 3, 0.3},
	{"PATNA", 2, 0.2},
	{"RANCHI", 2, 0.4},
	{"BHOPAL", 2, 0.35},
	{"MANGALORE", 1, 0.45},
	{"MADURAI", 1, 0.35},
	{"RAJAHMUNDRY", 1, 0.3},
	{"SHIRDI", 1, 0.4},
	{"AURANGABAD", 1, 0.25},
}

var InternationalCities = []City{
	{"DUBAI", 15, 1.0},
	{"SINGAPORE", 13, 0.92},
	{"LONDON", 12, 0.95},
	{"DOHA", 11, 0.97},
	{"ABU DHABI", 10, 1.0},
	{"BANGKOK", 9, 0.75},
	{"KUALA LUMPUR", 8, 0.8},
	{"HONG KONG", 7, 0.7},
	{"UAE", 1, 0.85},
	{"MUSCAT", 6, 0.85},
	{"SHARJAH", 6, 0.85},
	{"COLOMBO", 5, 0.7},
	{"RIYADH", 5, 0.75},
	{"JEDDAH", 4, 0.65},
	{"KUWAIT", 4, 0.45},
	{"BAHRAIN", 3, 0.35},
	{"DHAKA", 3, 0.4},
	{"DAMMAM", 2, 0.3},
	{"MALDIVES", 2, 0.65},
	{"FRANKFURT", 7, 0.5},
}
