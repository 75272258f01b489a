package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/pkg/textnorm"
)

// Columnas esperadas (encabezado obligatorio, en cualquier orden):
//
//	sku, name, unit, cost_price, selling_price, stock, low_stock_threshold
//
// unit, stock y low_stock_threshold son opcionales.
var requiredColumns = []string{"sku", "name", "cost_price", "selling_price"}

// rowError error de una fila concreta del archivo (línea 1 = encabezado).
type rowError struct {
	Line int
	Err  error
}

func (e *rowError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

func (e *rowError) Unwrap() error { return e.Err }

// parseProducts lee el CSV (convertido a UTF-8 desde charset) y arma los requests de alta.
// Las filas inválidas no detienen la lectura; se devuelven aparte.
func parseProducts(r io.Reader, charset string, delimiter rune) ([]dto.CreateProductRequest, []error, error) {
	cr := csv.NewReader(textnorm.NewReader(r, charset))
	cr.Comma = delimiter
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("archivo vacío")
		}
		return nil, nil, fmt.Errorf("leer encabezado: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, nil, fmt.Errorf("falta la columna %q", c)
		}
	}

	var (
		out     []dto.CreateProductRequest
		rowErrs []error
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, &rowError{Line: line, Err: err})
			continue
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if field("sku") == "" && field("name") == "" {
			continue
		}
		req, err := toCreateRequest(field)
		if err != nil {
			rowErrs = append(rowErrs, &rowError{Line: line, Err: err})
			continue
		}
		out = append(out, req)
	}
	return out, rowErrs, nil
}

func toCreateRequest(field func(string) string) (dto.CreateProductRequest, error) {
	cost, err := parseMoney(field("cost_price"))
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("cost_price: %w", err)
	}
	price, err := parseMoney(field("selling_price"))
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("selling_price: %w", err)
	}
	stock, err := parseInt(field("stock"))
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("stock: %w", err)
	}
	threshold, err := parseInt(field("low_stock_threshold"))
	if err != nil {
		return dto.CreateProductRequest{}, fmt.Errorf("low_stock_threshold: %w", err)
	}
	return dto.CreateProductRequest{
		SKU:               field("sku"),
		Name:              field("name"),
		Unit:              field("unit"),
		CostPrice:         cost,
		SellingPrice:      price,
		InitialStock:      stock,
		LowStockThreshold: threshold,
	}, nil
}

// parseMoney acepta "1234.5", "1234,5" y "1.234,50".
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return decimal.Zero, errors.New("vacío")
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
