package bootstrap

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/application/usecase"
	"github.com/jhoicas/distribucion-api/internal/domain"
)

// Codificaciones aceptadas por ParseProductsCSV.
const (
	EncodingUTF8   = "utf8"
	EncodingLatin1 = "latin1"
	EncodingCP1252 = "cp1252"
)

func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf-8":
		return nil, nil
	case EncodingLatin1, "iso-8859-1":
		return charmap.ISO8859_1, nil
	case EncodingCP1252, "windows-1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("codificación no soportada: %s", name)
}

// ParseProductsCSV lee filas sku,nombre,descripcion,precio,stock. La cabecera es opcional.
// El precio acepta coma decimal ("1250,50").
func ParseProductsCSV(r io.Reader, enc string) ([]dto.CreateProductRequest, error) {
	e, err := decoderFor(enc)
	if err != nil {
		return nil, err
	}
	if e != nil {
		r = transform.NewReader(r, e.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 5
	reader.TrimLeadingSpace = true

	out := make([]dto.CreateProductRequest, 0)
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "sku") {
			continue
		}
		item, err := parseProductRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func parseProductRecord(rec []string) (dto.CreateProductRequest, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	rawPrice := rec[3]
	if !strings.Contains(rawPrice, ".") {
		rawPrice = strings.Replace(rawPrice, ",", ".", 1)
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("precio inválido %q", rec[3])
	}
	stock, err := strconv.Atoi(rec[4])
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("stock inválido %q", rec[4])
	}
	return dto.CreateProductRequest{
		SKU:         rec[0],
		Name:        rec[1],
		Description: rec[2],
		Price:       price,
		Stock:       stock,
	}, nil
}

// ImportReport resultado de una importación.
type ImportReport struct {
	Created int
	Skipped []string // SKUs que ya existían
}

// ImportProducts crea cada producto con el caso de uso de catálogo. Un SKU repetido se omite;
// cualquier otro error detiene la importación.
func ImportProducts(ctx context.Context, products *usecase.ProductUseCase, items []dto.CreateProductRequest) (*ImportReport, error) {
	report := &ImportReport{}
	for _, item := range items {
		_, err := products.Create(ctx, item)
		switch {
		case err == nil:
			report.Created++
		case errors.Is(err, domain.ErrDuplicate):
			report.Skipped = append(report.Skipped, item.SKU)
		default:
			return report, fmt.Errorf("producto %s: %w", item.SKU, err)
		}
	}
	return report, nil
}
