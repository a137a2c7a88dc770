package models

// Dataset column names, as they appear in the source header.
const (
	ColProvince   = "province"
	ColCity       = "city"
	ColType       = "type"
	ColBeds       = "beds"
	ColBaths      = "baths"
	ColPrice      = "price"
	ColSqFeet     = "sq_feet"
	ColLeaseTerm  = "lease_term"
	ColFurnishing = "furnishing"
	ColLatitude   = "latitude"
	ColLongitude  = "longitude"
)

// RequiredColumns must be present in every dataset source.
var RequiredColumns = []string{ColProvince, ColType, ColBeds, ColPrice, ColSqFeet, ColLeaseTerm}

// OptionalColumns are read when the source has them.
var OptionalColumns = []string{ColCity, ColBaths, ColFurnishing, ColLatitude, ColLongitude}
