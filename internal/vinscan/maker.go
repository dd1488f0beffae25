package vinscan

import "strings"

// wmiMakers maps world manufacturer identifier prefixes to maker names.
// Longer prefixes win over shorter ones.
var wmiMakers = map[string]string{
	"1HG": "Honda",
	"2HG": "Honda",
	"JHM": "Honda",
	"1FT": "Ford",
	"1FA": "Ford",
	"WF0": "Ford",
	"1G1": "Chevrolet",
	"2G1": "Chevrolet",
	"3G1": "Chevrolet",
	"1C4": "Jeep",
	"1C6": "Ram",
	"2C3": "Chrysler",
	"5YJ": "Tesla",
	"7SA": "Tesla",
	"JTD": "Toyota",
	"JT2": "Toyota",
	"4T1": "Toyota",
	"5TD": "Toyota",
	"JN1": "Nissan",
	"1N4": "Nissan",
	"JM1": "Mazda",
	"KMH": "Hyundai",
	"KNA": "Kia",
	"KND": "Kia",
	"WAU": "Audi",
	"TRU": "Audi",
	"WBA": "BMW",
	"WBS": "BMW",
	"WDB": "Mercedes-Benz",
	"WDD": "Mercedes-Benz",
	"W1K": "Mercedes-Benz",
	"WVW": "Volkswagen",
	"3VW": "Volkswagen",
	"WV1": "Volkswagen",
	"WP0": "Porsche",
	"YV1": "Volvo",
	"VF1": "Renault",
	"VF3": "Peugeot",
	"VF7": "Citroen",
	"VSS": "SEAT",
	"ZFA": "Fiat",
	"ZAR": "Alfa Romeo",
	"SAL": "Land Rover",
	"SAJ": "Jaguar",
	"VNK": "Toyota",
	"U5Y": "Kia",
	"TMB": "Skoda",
	"W0L": "Opel",
	"SB1": "Toyota",
}

// MakerFromVIN derives the manufacturer from the VIN's WMI prefix. Returns
// the empty string when the prefix is unknown.
func MakerFromVIN(vin string) string {
	vin = strings.ToUpper(vin)
	if len(vin) < 3 {
		return ""
	}
	if m, ok := wmiMakers[vin[:3]]; ok {
		return m
	}
	return ""
}
