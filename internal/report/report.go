package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ukydev/fleet-insights/internal/analytics"
	"github.com/ukydev/fleet-insights/internal/models"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names in workbook order.
const (
	SheetDrivers = "Drivers"
	SheetHealth  = "Health"
	SheetFuel    = "Fuel"
	SheetDaily   = "Daily"
)

// Data is everything exported for one fleet and period.
type Data struct {
	Drivers []models.DriverStats
	Health  []models.VehicleHealth
	Fuel    []models.VehicleFuelRow
	Daily   []models.DailyFuelPoint
}

// FromFleet runs the analytics needed for the report.
func FromFleet(vehicles []models.Vehicle, trips []models.TripWithVehicle, now time.Time) Data {
	return Data{
		Drivers: analytics.ComputeDriverStats(trips),
		Health:  analytics.ComputeVehicleHealth(vehicles, trips, now),
		Fuel:    analytics.ComputeVehicleFuelRows(trips),
		Daily:   analytics.ComputeDailyFuel(trips),
	}
}

type sheet struct {
	name    string
	headers []string
	widths  map[string]float64
	rows    [][]interface{}
}

func (d Data) sheets() []sheet {
	drivers := sheet{
		name:    SheetDrivers,
		headers: []string{"Rank", "Driver", "Vehicle", "SPZ", "Trips", "Distance (km)", "Avg speed", "Max speed", "Speeding", "Idle (min)", "Fuel (L)", "Fuel/km", "Cost", "Score"},
		widths:  map[string]float64{"B": 25, "C": 20},
	}
	for i, s := range d.Drivers {
		drivers.rows = append(drivers.rows, []interface{}{
			i + 1, s.Name, s.VehicleName, s.VehicleSPZ, s.TotalTrips, s.TotalDistance, s.AvgSpeed,
			s.MaxSpeed, s.SpeedingEvents, s.IdleMinutes, s.TotalFuel, s.FuelPerKm, s.TotalCost, s.Score,
		})
	}

	health := sheet{
		name:    SheetHealth,
		headers: []string{"Vehicle", "SPZ", "Code", "Active", "Speed", "Odometer", "Last seen", "Trips", "Distance (km)", "Max speed", "L/100km", "Speeding trips", "Score", "Status"},
		widths:  map[string]float64{"A": 20, "G": 20},
	}
	for _, h := range d.Health {
		health.rows = append(health.rows, []interface{}{
			h.VehicleName, h.VehicleSPZ, h.VehicleCode, h.IsActive, h.CurrentSpeed, h.Odometer, h.LastSeen,
			h.TotalTrips, h.TotalDistance, h.MaxSpeedRecorded, h.FuelEfficiency, h.SpeedingEvents, h.HealthScore, string(h.Status),
		})
	}

	fuel := sheet{
		name:    SheetFuel,
		headers: []string{"Vehicle", "SPZ", "Code", "Trips", "Fuel (L)", "Cost", "Distance (km)", "L/100km"},
		widths:  map[string]float64{"A": 20},
	}
	for _, r := range d.Fuel {
		fuel.rows = append(fuel.rows, []interface{}{
			r.VehicleName, r.VehicleSPZ, r.VehicleCode, r.Trips, r.Fuel, r.Cost, r.Distance, r.Per100km,
		})
	}

	daily := sheet{
		name:    SheetDaily,
		headers: []string{"Date", "Fuel (L)", "Cost"},
	}
	for _, p := range d.Daily {
		daily.rows = append(daily.rows, []interface{}{p.Date, p.Fuel, p.Cost})
	}

	return []sheet{drivers, health, fuel, daily}
}

// Build creates the workbook.
func Build(d Data) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1B4F72"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, s := range d.sheets() {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.name, "A1", &s.headers); err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err := f.SetCellStyle(s.name, "A1", lastHeader, headerStyle); err != nil {
		return err
	}
	for i, row := range s.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := row
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(s.headers))
	if err := f.SetColWidth(s.name, "A", lastCol, 12); err != nil {
		return err
	}
	for col, w := range s.widths {
		if err := f.SetColWidth(s.name, col, col, w); err != nil {
			return err
		}
	}
	return f.SetPanes(s.name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, d Data) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename returns the attachment name for a group and period.
func Filename(group string, from, to time.Time) string {
	return fmt.Sprintf("fleet_%s_%s_%s.xlsx", group, from.Format("20060102"), to.Format("20060102"))
}
