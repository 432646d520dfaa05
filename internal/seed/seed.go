// Package seed holds the fixture manifest used when no dispatch database is
// configured: one driver, today's packages, the recent delivery history and
// the initial notification batch.
package seed

import (
	"time"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

// Driver is the fixture profile behind the local login account.
func Driver() *model.Driver {
	return &model.Driver{
		ID:            "drv-001",
		EmployeeID:    "DRV-001",
		Name:          "John Anderson",
		Email:         "john.anderson@swifttrack.com",
		Phone:         "+1 (555) 987-6543",
		VehicleNumber: "ST-VAN-042",
		Rating:        4.8,
		JoinDate:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Settings:      model.DefaultSettings(),
	}
}

// Packages returns today's manifest plus the recent history, relative to the
// given operational day.
func Packages(today time.Time) []*model.Package {
	day := midnight(today)
	out := []*model.Package{
		{
			ID:                  "PKG-1001",
			TrackingNumber:      "ST1001",
			Customer:            model.Customer{Name: "Alice Johnson", Phone: "+1 (555) 123-4567", Address: "123 Main St, Downtown, City 12345"},
			Sender:              model.Sender{Name: "TechWorld Warehouse"},
			TimeWindow:          window(day, 9, 11),
			Priority:            model.PriorityHigh,
			ServiceType:         model.ServiceExpress,
			Weight:              "2.5 kg",
			Category:            "Electronics",
			SpecialInstructions: "Handle with care - fragile items",
			AttemptNumber:       1,
			MaxAttempts:         3,
			Status:              model.StatusPending,
			DeliveryDate:        day,
		},
		{
			ID:             "PKG-1002",
			TrackingNumber: "ST1002",
			Customer:       model.Customer{Name: "Bob Wilson", Phone: "+1 (555) 234-5678", Address: "456 Oak Ave, Midtown, City 12346"},
			TimeWindow:     window(day, 10, 12),
			Priority:       model.PriorityMedium,
			ServiceType:    model.ServiceStandard,
			Weight:         "1.2 kg",
			Category:       "Documents",
			AttemptNumber:  1,
			MaxAttempts:    3,
			Status:         model.StatusDelivered,
			Proof: &model.ProofOfDelivery{
				RecipientName: "Bob Wilson",
				PhotoImage:    "photo-seed-1002",
				CapturedAt:    day.Add(10*time.Hour + 30*time.Minute),
			},
			DeliveryDate: day,
		},
		{
			ID:             "PKG-1003",
			TrackingNumber: "ST1003",
			Customer:       model.Customer{Name: "Carol Davis", Phone: "+1 (555) 345-6789", Address: "789 Pine Rd, Uptown, City 12347"},
			TimeWindow:     window(day, 13, 15),
			Priority:       model.PriorityLow,
			ServiceType:    model.ServiceEconomy,
			Weight:         "5.0 kg",
			Category:       "Clothing",
			AttemptNumber:  1,
			MaxAttempts:    3,
			Status:         model.StatusPending,
			DeliveryDate:   day,
		},
		{
			ID:                  "PKG-1004",
			TrackingNumber:      "ST1004",
			Customer:            model.Customer{Name: "David Brown", Phone: "+1 (555) 456-7890", Address: "321 Elm St, Suburban, City 12348"},
			TimeWindow:          window(day, 14, 16),
			Priority:            model.PriorityHigh,
			ServiceType:         model.ServiceExpress,
			Weight:              "3.1 kg",
			Category:            "Medical",
			SpecialInstructions: "Requires signature - medical supplies",
			AttemptNumber:       1,
			MaxAttempts:         3,
			Status:              model.StatusPending,
			DeliveryDate:        day,
		},
		{
			ID:             "PKG-1005",
			TrackingNumber: "ST1005",
			Customer:       model.Customer{Name: "Eva Martinez", Phone: "+1 (555) 567-8901", Address: "654 Birch Ave, Westside, City 12349"},
			TimeWindow:     window(day, 15, 17),
			Priority:       model.PriorityMedium,
			ServiceType:    model.ServiceStandard,
			Weight:         "0.8 kg",
			Category:       "Books",
			AttemptNumber:  1,
			MaxAttempts:    3,
			Status:         model.StatusFailed,
			Failure: &model.FailureRecord{
				ReasonID:   "recipient_not_available",
				RecordedAt: day.Add(15*time.Hour + 40*time.Minute),
			},
			DeliveryDate: day,
		},
		{
			ID:             "PKG-1006",
			TrackingNumber: "ST1006",
			Customer:       model.Customer{Name: "Frank Miller", Phone: "+1 (555) 678-9012", Address: "987 Cedar Ln, Eastside, City 12350"},
			TimeWindow:     window(day, 16, 18),
			Priority:       model.PriorityLow,
			ServiceType:    model.ServiceEconomy,
			Weight:         "4.2 kg",
			Category:       "Home Goods",
			AttemptNumber:  1,
			MaxAttempts:    3,
			Status:         model.StatusPending,
			DeliveryDate:   day,
		},
	}
	return append(out, history(day)...)
}

func history(day time.Time) []*model.Package {
	return []*model.Package{
		delivered("PKG-0998", "John Smith", "111 Yesterday St, City 12345", "+1 (555) 111-2222",
			model.PriorityMedium, model.ServiceStandard, "1.5 kg", "Books", day.AddDate(0, 0, -1), 9, 11),
		delivered("PKG-0997", "Sarah Wilson", "333 Past Ave, City 12347", "+1 (555) 555-6666",
			model.PriorityHigh, model.ServiceExpress, "2.2 kg", "Electronics", day.AddDate(0, 0, -1), 13, 15),
		delivered("PKG-0996", "Jane Doe", "222 Last Week Ave, City 12346", "+1 (555) 333-4444",
			model.PriorityLow, model.ServiceEconomy, "3.0 kg", "Clothing", day.AddDate(0, 0, -2), 14, 16),
		failed("PKG-0995", "Mike Johnson", "444 Historic Blvd, City 12348", "+1 (555) 777-8888",
			model.PriorityMedium, model.ServiceStandard, "1.8 kg", "Documents", day.AddDate(0, 0, -2), 10, 12),
		delivered("PKG-0994", "Lisa Davis", "555 Old Street, City 12349", "+1 (555) 999-0000",
			model.PriorityHigh, model.ServiceExpress, "4.1 kg", "Medical", day.AddDate(0, 0, -3), 15, 17),
		delivered("PKG-0990", "Robert Brown", "666 Ancient Road, City 12350", "+1 (555) 111-0000",
			model.PriorityLow, model.ServiceEconomy, "5.5 kg", "Home Goods", day.AddDate(0, 0, -7), 11, 13),
	}
}

// Notifications is the initial feed content: the pending route updates the
// dispatch side would have pushed before the session opened.
func Notifications(now time.Time) []model.Notification {
	return []model.Notification{
		{
			ID:        "update-001",
			Kind:      model.KindRoute,
			Title:     "Route Optimization Available",
			Body:      "New optimized route can save 15 minutes and 3.2km",
			Priority:  model.PriorityMedium,
			CreatedAt: now.Add(-5 * time.Minute),
		},
		{
			ID:        "update-002",
			Kind:      model.KindAlert,
			Title:     "Traffic Alert on Main Street",
			Body:      "Heavy traffic detected. Alternative route via Oak Avenue recommended.",
			Priority:  model.PriorityMedium,
			CreatedAt: now.Add(-12 * time.Minute),
		},
		{
			ID:             "update-003",
			Kind:           model.KindPriority,
			Title:          "New Priority Delivery Added",
			Body:           "Express package PKG-1004 added to route with 2-hour delivery window.",
			Priority:       model.PriorityHigh,
			ActionRequired: true,
			PackageID:      "PKG-1004",
			CreatedAt:      now.Add(-25 * time.Minute),
		},
	}
}

// DistanceKm holds the planned leg distances for today's route.
func DistanceKm() map[string]float64 {
	return map[string]float64{
		"PKG-1001": 0.0,
		"PKG-1002": 2.3,
		"PKG-1003": 4.7,
		"PKG-1004": 6.1,
		"PKG-1005": 8.9,
		"PKG-1006": 10.4,
	}
}

// ETAs holds the dispatch arrival estimates for today's stops.
func ETAs(today time.Time) map[string]time.Time {
	day := midnight(today)
	return map[string]time.Time{
		"PKG-1001": day.Add(9*time.Hour + 15*time.Minute),
		"PKG-1002": day.Add(10*time.Hour + 30*time.Minute),
		"PKG-1003": day.Add(13*time.Hour + 45*time.Minute),
		"PKG-1004": day.Add(14*time.Hour + 15*time.Minute),
		"PKG-1005": day.Add(15*time.Hour + 30*time.Minute),
		"PKG-1006": day.Add(16*time.Hour + 20*time.Minute),
	}
}

// TrafficDelays flags the stops dispatch marked as traffic-delayed.
func TrafficDelays() map[string]bool {
	return map[string]bool{"PKG-1003": true}
}

func delivered(id, name, address, phone string, prio model.Priority, svc model.ServiceType, weight, category string, day time.Time, startHour, endHour int) *model.Package {
	p := base(id, name, address, phone, prio, svc, weight, category, day, startHour, endHour)
	p.Status = model.StatusDelivered
	p.Proof = &model.ProofOfDelivery{
		RecipientName: name,
		PhotoImage:    model.ImageRef("photo-seed-" + id),
		CapturedAt:    day.Add(time.Duration(endHour-1) * time.Hour),
	}
	return p
}

func failed(id, name, address, phone string, prio model.Priority, svc model.ServiceType, weight, category string, day time.Time, startHour, endHour int) *model.Package {
	p := base(id, name, address, phone, prio, svc, weight, category, day, startHour, endHour)
	p.Status = model.StatusFailed
	p.Failure = &model.FailureRecord{
		ReasonID:   "recipient_not_available",
		RecordedAt: day.Add(time.Duration(endHour-1) * time.Hour),
	}
	return p
}

func base(id, name, address, phone string, prio model.Priority, svc model.ServiceType, weight, category string, day time.Time, startHour, endHour int) *model.Package {
	return &model.Package{
		ID:             id,
		TrackingNumber: "ST" + id[len(id)-4:],
		Customer:       model.Customer{Name: name, Phone: phone, Address: address},
		TimeWindow:     window(day, startHour, endHour),
		Priority:       prio,
		ServiceType:    svc,
		Weight:         weight,
		Category:       category,
		AttemptNumber:  1,
		MaxAttempts:    3,
		DeliveryDate:   day,
	}
}

func window(day time.Time, startHour, endHour int) model.TimeWindow {
	return model.TimeWindow{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
