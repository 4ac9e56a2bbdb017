// Package fetch downloads the public OMIE, OMIP, REN and tariff simulator
// files.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// URLs lists the remote sources. Marginal is a pattern taking the market day
// as YYYYMMDD.
type URLs struct {
	Acum           string `yaml:"acum"`
	Indicadores    string `yaml:"indicadores"`
	Marginal       string `yaml:"marginal"`
	OMIPDaily      string `yaml:"omip_daily"`
	TariffWorkbook string `yaml:"tariff_workbook"`
	RENProduction  string `yaml:"ren_production"`
}

func DefaultURLs() URLs {
	return URLs{
		Acum:           "https://www.omie.es/sites/default/files/dados/NUEVA_SECCION/INT_PBC_EV_H_ACUM.TXT",
		Indicadores:    "https://www.omie.es/sites/default/files/dados/diario/INDICADORES.DAT",
		Marginal:       "https://www.omie.es/es/file-download?parents=marginalpdbcpt&filename=marginalpdbcpt_%s.1",
		OMIPDaily:      "https://www.omip.pt/sites/default/files/dados/eod/omipdaily.xlsx",
		TariffWorkbook: "https://raw.githubusercontent.com/tiagofelicia/simulador-tarifarios-eletricidade/main/Tarifarios_%F0%9F%94%8C_Eletricidade_Tiago_Felicia.xlsx",
		RENProduction:  "https://datahub.ren.pt/service/download/csv/1354",
	}
}

const DefaultTimeout = 20 * time.Second

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 404
}

type Client struct {
	http *resty.Client
	urls URLs
}

func New(urls URLs, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: resty.New().SetTimeout(timeout),
		urls: urls,
	}
}

func (c *Client) get(ctx context.Context, url string, prepare func(*resty.Request)) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if prepare != nil {
		prepare(req)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode(), URL: url}
	}
	return resp.Body(), nil
}

// Acum downloads the accumulated quarter-hour prices of the current year.
func (c *Client) Acum(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.urls.Acum, nil)
}

// Indicadores downloads the latest auction session indicators.
func (c *Client) Indicadores(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.urls.Indicadores, nil)
}

// Marginal downloads the PT/ES marginal price file of one market day.
func (c *Client) Marginal(ctx context.Context, day time.Time) ([]byte, error) {
	url := fmt.Sprintf(c.urls.Marginal, day.Format("20060102"))
	return c.get(ctx, url, func(r *resty.Request) {
		r.SetHeader("User-Agent", "Mozilla/5.0")
	})
}

func (c *Client) OMIPDaily(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.urls.OMIPDaily, nil)
}

func (c *Client) TariffWorkbook(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.urls.TariffWorkbook, nil)
}

// RENProduction downloads the production breakdown between two dates,
// bypassing any cache on the REN side.
func (c *Client) RENProduction(ctx context.Context, start, end time.Time) ([]byte, error) {
	return c.get(ctx, c.urls.RENProduction, func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"startDateString": start.Format("2006-01-02"),
			"endDateString":   end.Format("2006-01-02"),
			"culture":         "pt-PT",
		})
		r.SetHeaders(map[string]string{
			"Cache-Control": "no-cache, no-store, must-revalidate",
			"Pragma":        "no-cache",
			"Expires":       "0",
		})
	})
}
