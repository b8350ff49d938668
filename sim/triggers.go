package sim

import "github.com/shopspring/decimal"

func hitStopLoss(p *Position, price decimal.Decimal) bool {
	if !p.StopLoss.Valid {
		return false
	}
	return price.LessThanOrEqual(p.StopLoss.Decimal)
}

func hitTakeProfit(p *Position, price decimal.Decimal) bool {
	if !p.TakeProfit.Valid {
		return false
	}
	return price.GreaterThanOrEqual(p.TakeProfit.Decimal)
}
