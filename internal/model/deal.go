package model

// DealType indicates whether the daily deal sells to or buys from the player.
type DealType string

const (
	DealSell DealType = "Sell"
	DealBuy  DealType = "Buy"
)

// DailyDeal is the single daily resource sale/purchase offer.
type DailyDeal struct {
	DealType      DealType
	Amount        int
	Resource      string
	Credits       int
	ChangePercent float64
}

// Direction reports whether the deal is a profit (selling) or savings
// (buying) opportunity. Derived from DealType, never stored.
func (d *DailyDeal) Direction() string {
	if d.DealType == DealSell {
		return "profit"
	}
	return "savings"
}
