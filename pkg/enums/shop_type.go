package enums

import "fmt"

// ShopType identifies the operating profile a product or sale belongs to.
type ShopType string

const (
	ShopTypeStationery   ShopType = "STATIONERY"
	ShopTypeGeneralStore ShopType = "GENERAL_STORE"
)

var validShopTypes = []ShopType{
	ShopTypeStationery,
	ShopTypeGeneralStore,
}

// String implements fmt.Stringer.
func (s ShopType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShopType.
func (s ShopType) IsValid() bool {
	for _, candidate := range validShopTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShopType converts raw input into a ShopType.
func ParseShopType(value string) (ShopType, error) {
	for _, candidate := range validShopTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shop type %q", value)
}

// ShopTypes returns all operating profiles, used by combined reporting.
func ShopTypes() []ShopType {
	return append([]ShopType{}, validShopTypes...)
}
