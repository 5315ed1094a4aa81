package enums

// ProductStatus controls whether a listing is visible and purchasable.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

var productStatuses = newValueSet("product status",
	ProductStatusActive,
	ProductStatusInactive,
)

func (v ProductStatus) IsValid() bool { return productStatuses.has(v) }

func ParseProductStatus(raw string) (ProductStatus, error) {
	return productStatuses.parse(raw)
}
