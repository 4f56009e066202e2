package handlers

import (
	"fmt"
	"net/http"

	"github.com/vancomm/minesweeper/internal/repository"
)

func (g GameHandler) Records(w http.ResponseWriter, r *http.Request) {
	if g.records == nil {
		sendError(w, g.logger, http.StatusServiceUnavailable, fmt.Errorf("records are disabled"))
		return
	}

	var filter repository.RecordFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		badRequest(w, g.logger, err)
		return
	}

	records, err := g.records.GetRecords(r.Context(), filter)
	if err != nil {
		internalError(w, g.logger, "unable to fetch records", err)
		return
	}
	if records == nil {
		records = []repository.Record{}
	}
	sendJSONOrLog(w, g.logger, records)
}
