package handlers

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"flight_board/internal/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Flights"

var exportHeader = []any{
	"Flight", "Type", "Mode", "Status", "Airline", "Passengers",
	"Scheduled", "Estimated", "Stand", "Belt / Gate", "Origin / Destination",
}

// GET /api/all_flights/export?date=YYYY-MM-DD
// 200: xlsx workbook of the all-flights set, ordered by estimated time
func (h *FlightHandler) ExportAllFlights(w http.ResponseWriter, r *http.Request) {
	date := dateParam(r)

	resp, err := h.service.AllFlights(r.Context(), date)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}

	f, err := buildWorkbook(resp.Flights)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	defer f.Close()

	name := "flights.xlsx"
	if date != "" {
		name = fmt.Sprintf("flights-%s.xlsx", date)
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		h.logger.Warn("write workbook", zap.Error(err))
	}
}

func buildWorkbook(flights []models.FlightRecord) (*excelize.File, error) {
	rows := slices.Clone(flights)
	slices.SortStableFunc(rows, func(a, b models.FlightRecord) int {
		return strings.Compare(a.EstimatedTime(), b.EstimatedTime())
	})

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("cell name: %w", err)
		}
		row := exportRow(rec)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

func exportRow(rec models.FlightRecord) []any {
	scheduled, estimated, stand := rec.STOA, rec.ETOA, rec.PSTA
	beltOrGate, place := rec.ArrivalBeltNo, rec.Origin
	if rec.FlightType == models.FlightTypeDeparture {
		scheduled, estimated, stand = rec.STOD, rec.ETOD, rec.PSTD
		beltOrGate, place = rec.DepBoardingGateNo, rec.Destination
	}

	var standCell any = ""
	if stand != nil {
		standCell = *stand
	}

	return []any{
		rec.Flight,
		rec.FlightType,
		rec.FlightMode,
		rec.OperationalStatus,
		deref(rec.Airline),
		rec.NumberOfPassenger,
		deref(scheduled),
		deref(estimated),
		standCell,
		deref(beltOrGate),
		deref(place),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
