package reporting

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// XLSXContentType is the MIME type of an Excel workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Dataset is one exportable table. Sheet is called on every request.
type Dataset struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Sheet       func() Sheet `json:"-"`
}

// Catalogue is an ordered set of datasets.
type Catalogue struct {
	datasets []Dataset
	byID     map[string]int
}

// NewCatalogue indexes datasets by ID. Duplicate IDs panic.
func NewCatalogue(datasets ...Dataset) *Catalogue {
	c := &Catalogue{byID: make(map[string]int, len(datasets))}
	for _, d := range datasets {
		if _, dup := c.byID[d.ID]; dup {
			panic(fmt.Sprintf("reporting: duplicate dataset %q", d.ID))
		}
		c.byID[d.ID] = len(c.datasets)
		c.datasets = append(c.datasets, d)
	}
	return c
}

// List returns every dataset in registration order.
func (c *Catalogue) List() []Dataset {
	out := make([]Dataset, len(c.datasets))
	copy(out, c.datasets)
	return out
}

// Find looks up a dataset by ID.
func (c *Catalogue) Find(id string) (Dataset, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Dataset{}, false
	}
	return c.datasets[i], true
}

// Report is the JSON rendering of a dataset.
type Report struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	GeneratedAt time.Time        `json:"generated_at"`
	Columns     []Column         `json:"columns"`
	Rows        []map[string]any `json:"rows"`
}

// Handler serves the catalogue.
type Handler struct {
	catalogue *Catalogue
}

// NewHandler creates a new reporting handler.
func NewHandler(catalogue *Catalogue) *Handler {
	return &Handler{catalogue: catalogue}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports")
	g.GET("", h.ListDatasets)
	g.GET("/:id", h.GetDataset)
	g.GET("/:id/xlsx", h.ExportDataset)
}

func (h *Handler) ListDatasets(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalogue.List())
}

func (h *Handler) find(c echo.Context) (Dataset, error) {
	d, ok := h.catalogue.Find(c.Param("id"))
	if !ok {
		return Dataset{}, echo.NewHTTPError(http.StatusNotFound, "dataset not found")
	}
	return d, nil
}

func (h *Handler) GetDataset(c echo.Context) error {
	d, err := h.find(c)
	if err != nil {
		return err
	}
	sheet := d.Sheet()
	return c.JSON(http.StatusOK, Report{
		ID:          d.ID,
		Name:        d.Name,
		GeneratedAt: time.Now().UTC(),
		Columns:     sheet.Columns,
		Rows:        sheet.Records(),
	})
}

func (h *Handler) ExportDataset(c echo.Context) error {
	d, err := h.find(c)
	if err != nil {
		return err
	}
	sheet := d.Sheet()
	if sheet.Name == "" {
		sheet.Name = d.Name
	}
	data, err := XLSXBytes(sheet)
	if err != nil {
		return fmt.Errorf("export %s: %w", d.ID, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.xlsx"`, d.ID))
	return c.Blob(http.StatusOK, XLSXContentType, data)
}
