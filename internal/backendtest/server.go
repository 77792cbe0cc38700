// Package backendtest runs an in-memory reorder backend for tests. It speaks
// the same JSON contract as the real service and lets a test inject
// failures or hold a route open to control ordering.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Route names accepted by FailNext, Hold and Calls.
const (
	RouteProducts        = "products"
	RouteRecommendations = "recommendations"
	RouteAnalytics       = "analytics"
	RouteAdd             = "add"
	RouteDelete          = "delete"
	RouteOrder           = "order"
	RouteSimulate        = "simulate"
	RouteExport          = "export"
	RouteHealth          = "health"
)

type failure struct {
	status  int
	message string
}

// Server is an httptest server with mutable fixtures.
type Server struct {
	*httptest.Server

	mu              sync.Mutex
	products        []domain.Product
	recommendations []domain.Recommendation
	analytics       domain.Analytics
	simulated       []domain.Recommendation
	exportRows      [][]any
	failures        map[string][]failure
	holds           map[string]chan struct{}
	calls           map[string]int
	lastBodies      map[string][]byte
	lastHeaders     map[string]http.Header
}

// New starts a server seeded with Fixture data. Callers must Close it.
func New() *Server {
	s := &Server{
		products:        FixtureProducts(),
		recommendations: FixtureRecommendations(),
		analytics:       FixtureAnalytics(),
		simulated:       FixtureSimulatedRecommendations(),
		exportRows:      [][]any{{"A", "1"}, {"B", "2"}},
		failures:        make(map[string][]failure),
		holds:           make(map[string]chan struct{}),
		calls:           make(map[string]int),
		lastBodies:      make(map[string][]byte),
		lastHeaders:     make(map[string]http.Header),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", s.wrap(RouteProducts, s.handleProducts)).Methods(http.MethodGet)
	api.HandleFunc("/recommendations", s.wrap(RouteRecommendations, s.handleRecommendations)).Methods(http.MethodGet)
	api.HandleFunc("/analytics", s.wrap(RouteAnalytics, s.handleAnalytics)).Methods(http.MethodGet)
	api.HandleFunc("/products/add", s.wrap(RouteAdd, s.handleAdd)).Methods(http.MethodPost)
	api.HandleFunc("/products/delete/{id}", s.wrap(RouteDelete, s.handleDelete)).Methods(http.MethodDelete)
	api.HandleFunc("/create-order", s.wrap(RouteOrder, s.handleOrder)).Methods(http.MethodPost)
	api.HandleFunc("/simulate-spike", s.wrap(RouteSimulate, s.handleSimulate)).Methods(http.MethodPost)
	api.HandleFunc("/export", s.wrap(RouteExport, s.handleExport)).Methods(http.MethodPost)
	api.HandleFunc("/health", s.wrap(RouteHealth, s.handleHealth)).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	return s
}

// APIURL is the base URL a client should be configured with.
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

// FailNext makes the next call to route respond with status and an
// {"error": message} body. An empty message sends an empty JSON object.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, message: message})
}

// Hold blocks every call to route until the returned release func is called.
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[route] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.holds[route] == ch {
				delete(s.holds, route)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns how many requests route has received.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastBody returns the raw body of the most recent request to route.
func (s *Server) LastBody(route string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBodies[route]
}

// LastHeader returns the headers of the most recent request to route.
func (s *Server) LastHeader(route string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeaders[route]
}

// SetRecommendations replaces the recommendations fixture.
func (s *Server) SetRecommendations(recs []domain.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendations = recs
}

// SetExportRows replaces the rows returned by a csv export.
func (s *Server) SetExportRows(rows [][]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exportRows = rows
}

func (s *Server) wrap(route string, next func(w http.ResponseWriter, r *http.Request, body []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
		}

		s.mu.Lock()
		s.calls[route]++
		s.lastBodies[route] = body
		s.lastHeaders[route] = r.Header.Clone()
		hold := s.holds[route]
		var fail *failure
		if queue := s.failures[route]; len(queue) > 0 {
			fail = &queue[0]
			s.failures[route] = queue[1:]
		}
		s.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}

		if fail != nil {
			if fail.message == "" {
				writeJSON(w, fail.status, map[string]any{})
				return
			}
			writeJSON(w, fail.status, map[string]string{"error": fail.message})
			return
		}
		next(w, r, body)
	}
}

func (s *Server) handleProducts(w http.ResponseWriter, _ *http.Request, _ []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"products":    s.products,
		"total_count": len(s.products),
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, _ *http.Request, _ []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"recommendations": s.recommendations})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, _ *http.Request, _ []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.analytics)
}

func (s *Server) handleAdd(w http.ResponseWriter, _ *http.Request, body []byte) {
	var form domain.ProductForm
	if err := json.Unmarshal(body, &form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return
	}

	product, err := parseForm(form)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid data provided: %v", err)})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ProductID == product.ProductID {
			writeJSON(w, http.StatusConflict, map[string]string{"error": fmt.Sprintf("Product ID '%s' already exists.", product.ProductID)})
			return
		}
	}
	s.products = append(s.products, product)
	s.analytics.CriticalityBreakdown[string(product.Criticality)]++
	writeJSON(w, http.StatusCreated, map[string]string{"message": fmt.Sprintf("Product '%s' added successfully.", product.ProductID)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, _ []byte) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ProductID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			s.recommendations = withoutRecommendation(s.recommendations, id)
			writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Product '%s' deleted successfully.", id)})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
}

func (s *Server) handleOrder(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req domain.OrderRequest
	if err := json.Unmarshal(body, &req); err != nil || req.ProductID == "" || req.Quantity == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id and quantity are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ProductID == req.ProductID {
			s.products[i].IncomingStock += req.Quantity
			s.recommendations = withoutRecommendation(s.recommendations, req.ProductID)
			writeJSON(w, http.StatusOK, map[string]any{
				"message":            fmt.Sprintf("Order for %d units of %s created successfully. Incoming stock updated.", req.Quantity, req.ProductID),
				"product_id":         req.ProductID,
				"new_incoming_stock": s.products[i].IncomingStock,
			})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
}

func (s *Server) handleSimulate(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req domain.SimulationRequest
	if err := json.Unmarshal(body, &req); err != nil || req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"simulation":      req,
		"recommendations": s.simulated,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req struct {
		Format string `json:"format"`
	}
	_ = json.Unmarshal(body, &req)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch req.Format {
	case "csv":
		writeJSON(w, http.StatusOK, map[string]any{
			"format":   "csv",
			"data":     s.exportRows,
			"filename": "reorder_report_20240101_120000.csv",
		})
	case "json":
		writeJSON(w, http.StatusOK, map[string]any{
			"format": "json",
			"data": map[string]any{
				"recommendations": s.recommendations,
				"total_items":     len(s.recommendations),
			},
			"filename": "reorder_report_20240101_120000.json",
		})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unsupported export format"})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ []byte) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "timestamp": "2024-01-01T12:00:00"})
}

func parseForm(f domain.ProductForm) (domain.Product, error) {
	var (
		p   = domain.Product{ProductID: f.ProductID, Criticality: domain.Criticality(f.Criticality)}
		err error
	)
	if p.CurrentStock, err = strconv.Atoi(f.CurrentStock); err != nil {
		return p, err
	}
	if p.IncomingStock, err = strconv.Atoi(f.IncomingStock); err != nil {
		return p, err
	}
	if p.AverageDailySales, err = decimal.NewFromString(f.AverageDailySales); err != nil {
		return p, err
	}
	if p.LeadTimeDays, err = strconv.Atoi(f.LeadTimeDays); err != nil {
		return p, err
	}
	if p.MinReorderQuantity, err = strconv.Atoi(f.MinReorderQuantity); err != nil {
		return p, err
	}
	if p.CostPerUnit, err = decimal.NewFromString(f.CostPerUnit); err != nil {
		return p, err
	}
	return p, nil
}

func withoutRecommendation(recs []domain.Recommendation, id string) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec.ProductID != id {
			out = append(out, rec)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
