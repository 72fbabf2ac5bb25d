package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/datasetforge/review-service/internal/review"
)

// createItemRequest is the JSON body for POST /api/v1/items.
type createItemRequest struct {
	DatasetTypeID string                 `json:"dataset_type_id" validate:"required,uuid"`
	Language      string                 `json:"language" validate:"required,max=16"`
	Content       map[string]interface{} `json:"content" validate:"required"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
}

// bulkCreateRequest is the JSON body for POST /api/v1/items/bulk.
type bulkCreateRequest struct {
	Items []createItemRequest `json:"items" validate:"required,min=1,max=1000,dive"`
}

// createDatasetTypeRequest is the JSON body for POST /api/v1/dataset-types.
type createDatasetTypeRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Modality   string  `json:"modality" validate:"required,max=50"`
	PayoutRate float64 `json:"payout_rate" validate:"gte=0"`
}

func (r createItemRequest) toServiceRequest() (review.CreateItemRequest, error) {
	typeID, err := uuid.Parse(r.DatasetTypeID)
	if err != nil {
		return review.CreateItemRequest{}, err
	}
	return review.CreateItemRequest{
		DatasetTypeID: typeID,
		Language:      r.Language,
		Content:       r.Content,
		Meta:          r.Meta,
	}, nil
}

// createItem handles POST /api/v1/items.
func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	svcReq, err := req.toServiceRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "dataset_type_id must be a valid UUID")
		return
	}

	item, err := s.items.Create(r.Context(), svcReq)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, itemToResponse(item))
}

// bulkCreateItems handles POST /api/v1/items/bulk.
func (s *Server) bulkCreateItems(w http.ResponseWriter, r *http.Request) {
	var req bulkCreateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	svcReqs := make([]review.CreateItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcReq, err := item.toServiceRequest()
		if err != nil {
			writeError(w, http.StatusBadRequest, "dataset_type_id must be a valid UUID")
			return
		}
		svcReqs[i] = svcReq
	}

	result, err := s.items.BulkCreate(r.Context(), svcReqs)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := bulkCreateResponse{Created: make([]itemResponse, len(result.Created))}
	for i, item := range result.Created {
		resp.Created[i] = itemToResponse(item)
	}
	for _, be := range result.Errors {
		resp.Errors = append(resp.Errors, bulkErrorResponse{Index: be.Index, Error: be.Err.Error()})
	}

	status := http.StatusCreated
	if len(resp.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

// getItem handles GET /api/v1/items/{itemID}.
func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "item ID must be a valid UUID")
		return
	}

	item, err := s.items.Get(r.Context(), itemID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// listFlaggedItems handles GET /api/v1/items/flagged.
func (s *Server) listFlaggedItems(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	items, total, err := s.items.ListFlagged(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]itemResponse, len(items))
	for i, item := range items {
		out[i] = itemToResponse(item)
	}
	writeJSON(w, http.StatusOK, listResponse{Items: out, TotalCount: total})
}

// createDatasetType handles POST /api/v1/dataset-types.
func (s *Server) createDatasetType(w http.ResponseWriter, r *http.Request) {
	var req createDatasetTypeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	dt, err := s.items.CreateDatasetType(r.Context(), req.Name, req.Modality, req.PayoutRate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, datasetTypeToResponse(dt))
}

// getDatasetType handles GET /api/v1/dataset-types/{typeID}.
func (s *Server) getDatasetType(w http.ResponseWriter, r *http.Request) {
	typeID, err := uuid.Parse(chi.URLParam(r, "typeID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "dataset type ID must be a valid UUID")
		return
	}

	dt, err := s.items.GetDatasetType(r.Context(), typeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, datasetTypeToResponse(dt))
}

// listDatasetTypes handles GET /api/v1/dataset-types.
func (s *Server) listDatasetTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.items.ListDatasetTypes(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]datasetTypeResponse, len(types))
	for i, dt := range types {
		out[i] = datasetTypeToResponse(dt)
	}
	writeJSON(w, http.StatusOK, listResponse{Items: out, TotalCount: int64(len(out))})
}

// backfillNumbers handles POST /api/v1/dataset-types/{typeID}/backfill-numbers.
func (s *Server) backfillNumbers(w http.ResponseWriter, r *http.Request) {
	typeID, err := uuid.Parse(chi.URLParam(r, "typeID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "dataset type ID must be a valid UUID")
		return
	}

	assigned, err := s.numbering.BackfillNumbers(r.Context(), typeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"assigned": assigned})
}
