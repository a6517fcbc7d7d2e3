package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
)

// TableHandler serves the per-table views used when settling a table
type TableHandler struct {
	tableService *service.TableService
}

// NewTableHandler creates a new table handler
func NewTableHandler(tableService *service.TableService) *TableHandler {
	return &TableHandler{tableService: tableService}
}

// List handles listing the outlet's tables
func (h *TableHandler) List(c *gin.Context) {
	tables, err := h.tableService.ListTables(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Tables retrieved successfully", tables)
}

// ActiveOrders lists the table's orders that have not been billed or cancelled
func (h *TableHandler) ActiveOrders(c *gin.Context) {
	id, ok := pathID(c, "id", "table")
	if !ok {
		return
	}

	orders, err := h.tableService.ListActiveOrders(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Active orders retrieved successfully", orders)
}

// Summary merges the table's active orders into one tab
func (h *TableHandler) Summary(c *gin.Context) {
	id, ok := pathID(c, "id", "table")
	if !ok {
		return
	}

	summary, err := h.tableService.Summary(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Table summary retrieved successfully", summary)
}
