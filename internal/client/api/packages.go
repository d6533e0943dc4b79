package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/dmitrijs2005/deliveryio/internal/client/models"
	"github.com/dmitrijs2005/deliveryio/internal/filex"
)

// wirePackage accepts the loose shapes the backend produces: id may be
// missing, building may be a name or a numeric id.
type wirePackage struct {
	ID              *int64          `json:"id"`
	OwnerName       string          `json:"owner_name"`
	ApNumber        int             `json:"ap_number"`
	PackageType     *int64          `json:"package_type"`
	PackageTypeName string          `json:"package_type_name"`
	PhotoURL        string          `json:"photo_field"`
	Building        json.RawMessage `json:"building"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (w wirePackage) building() string {
	if len(w.Building) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(w.Building, &name); err == nil {
		return name
	}
	var id json.Number
	if err := json.Unmarshal(w.Building, &id); err == nil {
		return id.String()
	}
	return ""
}

// ListPackages fetches the package list. Both a bare JSON array and a
// paginated {"results": [...]} object are accepted; null entries and
// entries without an id are skipped.
func (c *Client) ListPackages(ctx context.Context) ([]models.Package, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: pathPackages, auth: true}, &raw); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	items, err := unwrapList(raw)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	out := make([]models.Package, 0, len(items))
	for _, item := range items {
		var w *wirePackage
		if err := json.Unmarshal(item, &w); err != nil {
			return nil, fmt.Errorf("list packages: %w: %v", ErrInvalidFormat, err)
		}
		if w == nil || w.ID == nil {
			continue
		}
		out = append(out, models.Package{
			ID:              *w.ID,
			OwnerName:       w.OwnerName,
			ApNumber:        w.ApNumber,
			PackageType:     w.PackageType,
			PackageTypeName: w.PackageTypeName,
			PhotoURL:        w.PhotoURL,
			Building:        w.building(),
			CreatedAt:       w.CreatedAt,
		})
	}
	return out, nil
}

func unwrapList(raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var page struct {
		Results *[]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil || page.Results == nil {
		return nil, ErrInvalidFormat
	}
	return *page.Results, nil
}

// NewPackage is the validated input of CreatePackage.
type NewPackage struct {
	OwnerName     string
	ApNumber      string
	PackageTypeID int64
	Photo         *filex.Photo
}

// CreatePackage posts the package as multipart form data.
func (c *Client) CreatePackage(ctx context.Context, p NewPackage) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := [][2]string{
		{"owner_name", p.OwnerName},
		{"ap_number", p.ApNumber},
		{"package_type", strconv.FormatInt(p.PackageTypeID, 10)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("create package: %w", err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo_field"; filename=%q`, p.Photo.Name))
	h.Set("Content-Type", p.Photo.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	if _, err := part.Write(p.Photo.Data); err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("create package: %w", err)
	}

	r := request{
		method:      http.MethodPost,
		path:        pathPackages,
		body:        &body,
		contentType: mw.FormDataContentType(),
		auth:        true,
	}
	if err := c.do(ctx, r, nil); err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	return nil
}

// ListTypes fetches the package type catalog.
func (c *Client) ListTypes(ctx context.Context) ([]models.PackageType, error) {
	var out []models.PackageType
	if err := c.do(ctx, request{method: http.MethodGet, path: pathTypes}, &out); err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}
	return out, nil
}

// ListBuildings fetches the building catalog.
func (c *Client) ListBuildings(ctx context.Context) ([]models.Building, error) {
	var out []models.Building
	if err := c.do(ctx, request{method: http.MethodGet, path: pathBuildings}, &out); err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	return out, nil
}
