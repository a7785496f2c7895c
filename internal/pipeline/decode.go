package pipeline

import (
	"fleetsmart/internal/tablestore"
	"fleetsmart/pkg/contracts/domain"
)

// Decoders convert cleaned tables into typed records. A table that fails
// its schema check decodes to an empty slice; rows missing a required key
// are skipped individually.

func decodeDrivers(t *tablestore.Table) []domain.Driver {
	ok, _ := driverSchema.Check(t)
	if !ok {
		return nil
	}
	out := make([]domain.Driver, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		id, ok := r.Int("driver_id")
		if !ok {
			continue
		}
		d := domain.Driver{DriverID: id}
		d.FirstName, _ = r.Text("first_name")
		d.LastName, _ = r.Text("last_name")
		d.HireDate = r.TimePtr("hire_date")
		d.EmploymentStatus, _ = r.Text("employment_status")
		out = append(out, d)
	}
	return out
}

func decodeTrucks(t *tablestore.Table) []domain.Truck {
	ok, _ := truckSchema.Check(t)
	if !ok {
		return nil
	}
	out := make([]domain.Truck, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		id, ok := r.Int("truck_id")
		if !ok {
			continue
		}
		truck := domain.Truck{TruckID: id}
		truck.UnitNumber, _ = r.Text("unit_number")
		if year, ok := r.Int("model_year"); ok {
			truck.ModelYear = year
		} else if year, ok := r.Time("model_year"); ok {
			// model_year can arrive as a coerced date column
			truck.ModelYear = year.Year()
		}
		truck.OdometerReading, _ = r.Float("odometer_reading")
		out = append(out, truck)
	}
	return out
}

func decodeRoutes(t *tablestore.Table) []domain.Route {
	ok, _ := routeSchema.Check(t)
	if !ok {
		return nil
	}
	out := make([]domain.Route, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		id, ok := r.Int("route_id")
		if !ok {
			continue
		}
		route := domain.Route{RouteID: id}
		route.OriginCity, _ = r.Text("origin_city")
		route.OriginState, _ = r.Text("origin_state")
		route.DestinationCity, _ = r.Text("destination_city")
		route.DestinationState, _ = r.Text("destination_state")
		route.TypicalDistanceMiles, _ = r.Float("typical_distance_miles")
		route.BaseRatePerMile, _ = r.Float("base_rate_per_mile")
		out = append(out, route)
	}
	return out
}

func decodeLoads(t *tablestore.Table) []domain.Load {
	ok, _ := loadSchema.Check(t)
	if !ok {
		return nil
	}
	out := make([]domain.Load, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		id, ok := r.Int("load_id")
		if !ok {
			continue
		}
		load := domain.Load{LoadID: id}
		load.Revenue, _ = r.Float("revenue")
		load.FuelSurcharge, _ = r.Float("fuel_surcharge")
		load.AccessorialCharges, _ = r.Float("accessorial_charges")
		load.LoadDate = r.TimePtr("load_date")
		out = append(out, load)
	}
	return out
}

func decodeTrips(t *tablestore.Table) []domain.Trip {
	ok, _ := tripSchema.Check(t)
	if !ok {
		return nil
	}
	out := make([]domain.Trip, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		tripID, ok := r.Int("trip_id")
		if !ok {
			continue
		}
		loadID, ok := r.Int("load_id")
		if !ok {
			continue
		}
		trip := domain.Trip{TripID: tripID, LoadID: loadID}
		trip.DriverID, _ = r.Int("driver_id")
		trip.TruckID, _ = r.Int("truck_id")
		trip.RouteID, _ = r.Int("route_id")
		trip.DispatchDate = r.TimePtr("dispatch_date")
		trip.ActualDistanceMiles, _ = r.Float("actual_distance_miles")
		trip.IdleTimeHours, _ = r.Float("idle_time_hours")
		trip.FuelGallonsUsed, _ = r.Float("fuel_gallons_used")
		out = append(out, trip)
	}
	return out
}

func decodeDeliveryEvents(t *tablestore.Table) []domain.DeliveryEvent {
	ok, _ := deliveryEventSchema.Check(t)
	if !ok {
		return nil
	}
	out := make([]domain.DeliveryEvent, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		loadID, ok := r.Int("load_id")
		if !ok {
			continue
		}
		tripID, ok := r.Int("trip_id")
		if !ok {
			continue
		}
		out = append(out, domain.DeliveryEvent{
			LoadID:            loadID,
			TripID:            tripID,
			ScheduledDatetime: r.TimePtr("scheduled_datetime"),
			ActualDatetime:    r.TimePtr("actual_datetime"),
		})
	}
	return out
}

func decodeFuelPurchases(t *tablestore.Table) []domain.FuelPurchase {
	ok, _ := fuelPurchaseSchema.Check(t)
	if !ok {
		return nil
	}
	out := make([]domain.FuelPurchase, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		id, ok := r.Int("truck_id")
		if !ok {
			continue
		}
		fp := domain.FuelPurchase{TruckID: id}
		fp.PurchaseDate = r.TimePtr("purchase_date")
		fp.Gallons, _ = r.Float("gallons")
		fp.TotalCost, _ = r.Float("total_cost")
		fp.PricePerGallon, _ = r.Float("price_per_gallon")
		out = append(out, fp)
	}
	return out
}

func decodeMaintenanceRecords(t *tablestore.Table) []domain.MaintenanceRecord {
	ok, _ := maintenanceSchema.Check(t)
	if !ok {
		return nil
	}
	out := make([]domain.MaintenanceRecord, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		id, ok := r.Int("truck_id")
		if !ok {
			continue
		}
		m := domain.MaintenanceRecord{TruckID: id}
		m.MaintenanceDate = r.TimePtr("maintenance_date")
		m.MaintenanceType, _ = r.Text("maintenance_type")
		m.TotalCost, _ = r.Float("total_cost")
		m.DowntimeHours, _ = r.Float("downtime_hours")
		out = append(out, m)
	}
	return out
}

func decodeSafetyIncidents(t *tablestore.Table) []domain.SafetyIncident {
	ok, _ := safetyIncidentSchema.Check(t)
	if !ok {
		return nil
	}
	out := make([]domain.SafetyIncident, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		id, ok := r.Int("driver_id")
		if !ok {
			continue
		}
		si := domain.SafetyIncident{DriverID: id}
		si.IncidentDate = r.TimePtr("incident_date")
		si.PreventableFlag, _ = r.Bool("preventable_flag")
		si.AtFaultFlag, _ = r.Bool("at_fault_flag")
		si.DamageCost, _ = r.Float("damage_cost")
		out = append(out, si)
	}
	return out
}

func decodeDriverMonthly(t *tablestore.Table) ([]domain.DriverMonthlyMetric, DriverMetricAvailability) {
	ok, optional := driverMonthlySchema.Check(t)
	avail := DriverMetricAvailability{
		HasRevenue:    optional["total_revenue"],
		HasMPG:        optional["average_mpg"],
		HasIdleHours:  optional["average_idle_hours"],
		HasOnTimeRate: optional["on_time_delivery_rate"],
	}
	if !ok {
		return nil, avail
	}
	out := make([]domain.DriverMonthlyMetric, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		id, ok := r.Int("driver_id")
		if !ok {
			continue
		}
		month, ok := r.Month("month")
		if !ok {
			continue
		}
		m := domain.DriverMonthlyMetric{DriverID: id, Month: month}
		if avail.HasRevenue {
			m.TotalRevenue = r.FloatPtr("total_revenue")
		}
		if avail.HasMPG {
			m.AverageMPG = r.FloatPtr("average_mpg")
		}
		if avail.HasIdleHours {
			m.AverageIdleHours = r.FloatPtr("average_idle_hours")
		}
		if avail.HasOnTimeRate {
			m.OnTimeDeliveryRate = r.FloatPtr("on_time_delivery_rate")
		}
		out = append(out, m)
	}
	return out, avail
}

func decodeTruckMonthly(t *tablestore.Table) ([]domain.TruckUtilizationMetric, TruckMetricAvailability) {
	ok, optional := truckMonthlySchema.Check(t)
	avail := TruckMetricAvailability{
		HasUtilization: optional["utilization_rate"],
		HasDowntime:    optional["downtime_hours"],
		HasMPG:         optional["average_mpg"],
	}
	if !ok {
		return nil, avail
	}
	out := make([]domain.TruckUtilizationMetric, 0, t.NumRows())
	for _, row := range t.Rows {
		r := rowReader{table: t, row: row}
		id, ok := r.Int("truck_id")
		if !ok {
			continue
		}
		month, ok := r.Month("month")
		if !ok {
			continue
		}
		m := domain.TruckUtilizationMetric{TruckID: id, Month: month}
		if avail.HasUtilization {
			m.UtilizationRate = r.FloatPtr("utilization_rate")
		}
		if avail.HasDowntime {
			m.DowntimeHours = r.FloatPtr("downtime_hours")
		}
		if avail.HasMPG {
			m.AverageMPG = r.FloatPtr("average_mpg")
		}
		out = append(out, m)
	}
	return out, avail
}
