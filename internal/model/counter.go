package model

// StoreCounter is a denormalized store-wide aggregate count kept for fast
// dashboard reads. Invariant: Count always equals the true row count it
// mirrors; it is adjusted in the same transaction as the row mutation and
// floor-clamped at zero.
type StoreCounter struct {
	Name  string `gorm:"primaryKey;type:varchar(50)" json:"name"`
	Count int64  `gorm:"not null;default:0;check:chk_counter_count,count >= 0" json:"count"`
}

func (StoreCounter) TableName() string {
	return "store_counters"
}

const (
	CounterProducts    = "products"
	CounterProductTags = "product_tags"
)

// TagProductCount tracks how many products reference a tag. When the count
// drops to zero during a product update/delete the tag is orphaned and removed.
type TagProductCount struct {
	TagID int64 `gorm:"primaryKey" json:"tag_id"`
	Count int64 `gorm:"not null;default:0;check:chk_tag_count,count >= 0" json:"count"`
}

func (TagProductCount) TableName() string {
	return "product_count_per_product_tag"
}
