package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Board queries
	boardQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_queries_total",
			Help: "Board queries by endpoint and outcome (ok, past_date, invalid_date, error).",
		},
		[]string{"endpoint", "outcome"},
	)
	boardWindowSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_window_flights",
			Help:    "Flights returned per board window part.",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 45, 60, 100, 200, 400},
		},
		[]string{"endpoint", "part"},
	)
	boardDayFlights = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_day_flights",
			Help:    "Flights matching the requested day before capping.",
			Buckets: []float64{0, 10, 50, 100, 200, 300, 400, 600, 800},
		},
		[]string{"endpoint"},
	)

	// Ingestion
	flightsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flights_ingested_total",
			Help: "Flight movements written to storage, by flight type.",
		},
		[]string{"flight_type"},
	)
	passengers = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "passengers_count",
			Help:    "Distribution of number_of_passenger for ingested flights.",
			Buckets: []float64{0, 10, 20, 50, 100, 150, 200, 250, 300},
		},
	)

	// Kafka
	kafkaMessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kafka_messages_sent_total",
			Help: "Total number of Kafka messages successfully sent.",
		},
	)
	kafkaMessagesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kafka_messages_processed_total",
			Help: "Total number of Kafka messages successfully processed.",
		},
	)
	kafkaErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_errors_total",
			Help: "Total number of Kafka-related errors.",
		},
		[]string{"component", "operation"},
	)
	kafkaConsumerLag = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kafka_consumer_lag",
			Help: "Kafka consumer lag (high watermark - current offset - 1).",
		},
		[]string{"topic", "partition"},
	)

	// Storage gauges
	flightRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flight_rows_count",
			Help: "Current count of stored flights by table and operational status.",
		},
		[]string{"table", "status"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,

			boardQueries,
			boardWindowSize,
			boardDayFlights,

			flightsIngested,
			passengers,

			kafkaMessagesSent,
			kafkaMessagesProcessed,
			kafkaErrors,
			kafkaConsumerLag,

			flightRows,
		)
		registerCacheMetrics()
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// --- HTTP ---
func ObserveHTTPRequest(method, route, code string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, code).Inc()
	httpDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// --- Board ---
func IncBoardQuery(endpoint, outcome string) {
	boardQueries.WithLabelValues(endpoint, outcome).Inc()
}

func ObserveWindow(endpoint string, past, upcoming, total int) {
	boardWindowSize.WithLabelValues(endpoint, "past").Observe(float64(past))
	boardWindowSize.WithLabelValues(endpoint, "upcoming").Observe(float64(upcoming))
	boardDayFlights.WithLabelValues(endpoint).Observe(float64(total))
}

func ObserveDayFlights(endpoint string, total int) {
	boardDayFlights.WithLabelValues(endpoint).Observe(float64(total))
}

// --- Ingestion ---
func IncFlightIngested(flightType string) { flightsIngested.WithLabelValues(flightType).Inc() }
func ObservePassengersCount(n int)        { passengers.Observe(float64(max(n, 0))) }

// --- Kafka ---
func IncKafkaSent()      { kafkaMessagesSent.Inc() }
func IncKafkaProcessed() { kafkaMessagesProcessed.Inc() }
func IncKafkaError(component, operation string) {
	kafkaErrors.WithLabelValues(component, operation).Inc()
}
func SetKafkaConsumerLag(topic string, partition int32, lag int64) {
	kafkaConsumerLag.WithLabelValues(topic, strconv.Itoa(int(partition))).Set(float64(max(lag, 0)))
}

// --- Gauges (DB collector) ---
func SetFlightRowCount(table, status string, count int64) {
	flightRows.WithLabelValues(table, status).Set(float64(max(count, 0)))
}
