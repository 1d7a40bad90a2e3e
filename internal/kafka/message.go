package kafka

import (
	"errors"
	"time"

	"flight_board/internal/models"
)

// ErrInvalidMessage marks payloads that will never succeed; the consumer
// skips them instead of retrying.
var ErrInvalidMessage = errors.New("invalid flight movement message")

// MovementMessage is one arrival or departure published by the ingestion
// pipeline. FlightType decides whether the paired fields are read as
// stoa/etoa/psta/belt/origin or stod/etod/pstd/gate/destination.
type MovementMessage struct {
	MessageID         string     `json:"message_id"`
	FlightType        string     `json:"flight_type"`
	Flight            string     `json:"flight"`
	OperationalStatus string     `json:"operational_status"`
	FlightMode        string     `json:"flight_mode"`
	NumberOfPassenger int        `json:"number_of_passenger"`
	Airline           *string    `json:"airline,omitempty"`
	ScheduledTime     *time.Time `json:"scheduled_time,omitempty"`
	EstimatedTime     *time.Time `json:"estimated_time,omitempty"`
	Stand             *string    `json:"stand,omitempty"`
	BeltOrGate        *string    `json:"belt_or_gate,omitempty"`
	Place             *string    `json:"place,omitempty"`
}

func NewArrivalMessage(messageID string, row models.ArrivalRow) *MovementMessage {
	return &MovementMessage{
		MessageID:         messageID,
		FlightType:        models.FlightTypeArrival,
		Flight:            row.Flight,
		OperationalStatus: row.OperationalStatus,
		FlightMode:        row.FlightMode,
		NumberOfPassenger: row.NumberOfPassenger,
		Airline:           row.Airline,
		ScheduledTime:     row.STOA,
		EstimatedTime:     row.ETOA,
		Stand:             row.PSTA,
		BeltOrGate:        row.ArrivalBeltNo,
		Place:             row.Origin,
	}
}

func NewDepartureMessage(messageID string, row models.DepartureRow) *MovementMessage {
	return &MovementMessage{
		MessageID:         messageID,
		FlightType:        models.FlightTypeDeparture,
		Flight:            row.Flight,
		OperationalStatus: row.OperationalStatus,
		FlightMode:        row.FlightMode,
		NumberOfPassenger: row.NumberOfPassenger,
		Airline:           row.Airline,
		ScheduledTime:     row.STOD,
		EstimatedTime:     row.ETOD,
		Stand:             row.PSTD,
		BeltOrGate:        row.DepBoardingGateNo,
		Place:             row.Destination,
	}
}

func (m *MovementMessage) ToArrivalRow() models.ArrivalRow {
	return models.ArrivalRow{
		Flight:            m.Flight,
		OperationalStatus: m.OperationalStatus,
		STOA:              m.ScheduledTime,
		FlightType:        models.FlightTypeArrival,
		FlightMode:        m.FlightMode,
		NumberOfPassenger: m.NumberOfPassenger,
		ETOA:              m.EstimatedTime,
		ArrivalBeltNo:     m.BeltOrGate,
		PSTA:              m.Stand,
		Airline:           m.Airline,
		Origin:            m.Place,
	}
}

func (m *MovementMessage) ToDepartureRow() models.DepartureRow {
	return models.DepartureRow{
		Flight:            m.Flight,
		OperationalStatus: m.OperationalStatus,
		STOD:              m.ScheduledTime,
		FlightType:        models.FlightTypeDeparture,
		FlightMode:        m.FlightMode,
		NumberOfPassenger: m.NumberOfPassenger,
		ETOD:              m.EstimatedTime,
		DepBoardingGateNo: m.BeltOrGate,
		PSTD:              m.Stand,
		Airline:           m.Airline,
		Destination:       m.Place,
	}
}
