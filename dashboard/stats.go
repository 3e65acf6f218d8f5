// Package dashboard derives the admin figures from order lists and keeps
// them fresh.
package dashboard

import (
	"sort"

	"restaurant-dashboard/models"

	"github.com/shopspring/decimal"
)

// DayRevenue is one point of the revenue chart
type DayRevenue struct {
	Day    string          `json:"day"`
	Amount decimal.Decimal `json:"amount"`
}

type Stats struct {
	TotalOrders   int                        `json:"totalOrders"`
	ByStatus      map[models.OrderStatus]int `json:"byStatus"`
	Active        int                        `json:"active"`
	Revenue       decimal.Decimal            `json:"revenue"`
	Gross         decimal.Decimal            `json:"gross"`
	AverageBasket decimal.Decimal            `json:"averageBasket"`
	RevenueByDay  []DayRevenue               `json:"revenueByDay"`
}

// Aggregate folds an order list into dashboard figures. Revenue counts
// delivered orders only; gross and the basket average count every order
// that was not cancelled.
func Aggregate(orders []models.Order) Stats {
	st := Stats{
		TotalOrders:   len(orders),
		ByStatus:      make(map[models.OrderStatus]int, len(models.AllStatuses)),
		Revenue:       decimal.Zero,
		Gross:         decimal.Zero,
		AverageBasket: decimal.Zero,
		RevenueByDay:  []DayRevenue{},
	}
	for _, s := range models.AllStatuses {
		st.ByStatus[s] = 0
	}

	perDay := map[string]decimal.Decimal{}
	billable := 0
	for _, o := range orders {
		st.ByStatus[o.Status]++
		if !o.Status.Terminal() {
			st.Active++
		}
		if o.Status == models.StatusCancelled {
			continue
		}
		billable++
		st.Gross = st.Gross.Add(o.TotalAmount)
		if o.Status == models.StatusDelivered {
			st.Revenue = st.Revenue.Add(o.TotalAmount)
			day := o.OrderDate.Format("2006-01-02")
			perDay[day] = perDay[day].Add(o.TotalAmount)
		}
	}
	if billable > 0 {
		st.AverageBasket = st.Gross.Div(decimal.NewFromInt(int64(billable))).Round(2)
	}

	for day, amount := range perDay {
		st.RevenueByDay = append(st.RevenueByDay, DayRevenue{Day: day, Amount: amount})
	}
	sort.Slice(st.RevenueByDay, func(i, j int) bool {
		return st.RevenueByDay[i].Day < st.RevenueByDay[j].Day
	})
	return st
}
