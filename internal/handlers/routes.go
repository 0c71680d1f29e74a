// internal/handlers/routes.go
package handlers

import "net/http"

const apiV1 = "/api/v1"

// Router groups the handlers served under /api/v1
type Router struct {
	Items     *ItemHandler
	Locations *LocationHandler
	Ledger    *LedgerHandler
	// Health is optional
	Health *HealthHandler
}

// Register adds every route to mux using method-specific patterns
func (rt *Router) Register(mux *http.ServeMux) {
	if rt.Health != nil {
		mux.HandleFunc("GET /health", rt.Health.Health)
		mux.HandleFunc("GET /ready", rt.Health.Readiness)
		mux.HandleFunc("GET "+apiV1+"/health", rt.Health.Health)
	}

	// Locations
	mux.HandleFunc("GET "+apiV1+"/locations", rt.Locations.ListLocations)
	mux.HandleFunc("POST "+apiV1+"/locations", rt.Locations.CreateLocation)
	mux.HandleFunc("GET "+apiV1+"/locations/{id}", rt.Locations.GetLocation)
	mux.HandleFunc("PUT "+apiV1+"/locations/{id}", rt.Locations.UpdateLocation)
	mux.HandleFunc("DELETE "+apiV1+"/locations/{id}", rt.Locations.DeleteLocation)

	// Items
	mux.HandleFunc("GET "+apiV1+"/items", rt.Items.ListItems)
	mux.HandleFunc("POST "+apiV1+"/items", rt.Items.CreateItem)
	mux.HandleFunc("GET "+apiV1+"/items/low-stock", rt.Items.LowStock)
	mux.HandleFunc("GET "+apiV1+"/items/{id}", rt.Items.GetItem)
	mux.HandleFunc("PATCH "+apiV1+"/items/{id}", rt.Items.UpdateItem)
	mux.HandleFunc("DELETE "+apiV1+"/items/{id}", rt.Items.DeleteItem)

	// Stock movements
	mux.HandleFunc("POST "+apiV1+"/items/{id}/transfer", rt.Items.Transfer)
	mux.HandleFunc("POST "+apiV1+"/items/{id}/sales", rt.Items.RecordSale)
	mux.HandleFunc("POST "+apiV1+"/items/{id}/wastage", rt.Items.RecordWastage)

	// Reports
	mux.HandleFunc("GET "+apiV1+"/products/{name}/quantity", rt.Items.ProductQuantity)
	mux.HandleFunc("GET "+apiV1+"/sales", rt.Ledger.ListSales)
	mux.HandleFunc("GET "+apiV1+"/wastage", rt.Ledger.ListWastage)
}
