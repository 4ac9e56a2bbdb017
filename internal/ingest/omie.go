package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"mibel_prices/internal/model"
)

// AcumParser parses the OMIE accumulated quarter-hour price file.
//
// Expected format (Windows-1252, two preamble lines):
//
//	OMIE - Mercado de electricidad;...
//	Precio del mercado diario ...;
//	Fecha;Hora;Precio marginal ES;Precio marginal PT;
//	10/03/2026;1;85,00;85,00;
type AcumParser struct{}

func NewAcumParser() *AcumParser {
	return &AcumParser{}
}

func (p *AcumParser) Parse(r io.Reader) ([]model.PriceRecord, error) {
	br := bufio.NewReader(charmap.Windows1252.NewDecoder().Reader(r))

	// The preamble is counted in physical lines, blank ones included.
	lineNum := 0
	for lineNum < 2 {
		lineNum++
		if _, err := br.ReadString('\n'); err != nil {
			return nil, fmt.Errorf("reading ACUM preamble line %d: %w", lineNum, err)
		}
	}

	cr := newSemicolonReader(br)
	lineNum++
	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("reading ACUM header: %w", err)
	}

	var records []model.PriceRecord
	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ACUM line %d: %w", lineNum, err)
		}
		if len(record) < 4 {
			continue
		}

		date, err := time.Parse("02/01/2006", field(record, 0))
		if err != nil {
			continue
		}
		period, err := strconv.Atoi(field(record, 1))
		if err != nil || period < 1 {
			continue
		}
		es, err := parsePrice(record[2])
		if err != nil {
			continue
		}
		pt, err := parsePrice(record[3])
		if err != nil {
			continue
		}

		records = append(records, model.PriceRecord{Date: date, Period: period, PricePT: pt, PriceES: es})
	}

	return records, nil
}

// IndicadoresParser parses the OMIE daily indicators file, which carries the
// prices of the most recent auction session.
//
//	SESION;11/03/2026;
//	H1Q1;85,00;84,50;
type IndicadoresParser struct{}

func NewIndicadoresParser() *IndicadoresParser {
	return &IndicadoresParser{}
}

var quarterLineRe = regexp.MustCompile(`^H(\d{1,2})Q([1-4]);`)

func (p *IndicadoresParser) Parse(r io.Reader) ([]model.PriceRecord, error) {
	sc := bufio.NewScanner(r)

	var (
		session time.Time
		found   bool
		lines   []string
	)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if !found && strings.HasPrefix(line, "SESION;") {
			parts := strings.Split(line, ";")
			d, err := time.Parse("02/01/2006", strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, fmt.Errorf("parsing session date %q: %w", parts[1], err)
			}
			session, found = d, true
			continue
		}
		if quarterLineRe.MatchString(line) {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading INDICADORES: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("no SESION line in INDICADORES")
	}

	records := make([]model.PriceRecord, 0, len(lines))
	for _, line := range lines {
		m := quarterLineRe.FindStringSubmatch(line)
		h, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])

		parts := strings.Split(line, ";")
		if len(parts) < 3 {
			continue
		}
		es, err := parseNumber(parts[1])
		if err != nil {
			continue
		}
		pt, err := parseNumber(parts[2])
		if err != nil {
			continue
		}

		records = append(records, model.PriceRecord{
			Date:    session,
			Period:  (h-1)*4 + q,
			PricePT: pt,
			PriceES: es,
		})
	}

	return records, nil
}

// MarginalParser parses one daily OMIE marginal price file for Portugal and
// Spain (marginalpdbcpt_YYYYMMDD.1). The file has no date column, so the
// market day is supplied by the caller.
//
//	MARGINALPDBCPT;
//	2026;03;10;1;85.00;84.50;
//	*
type MarginalParser struct {
	Date time.Time
}

func NewMarginalParser(date time.Time) *MarginalParser {
	return &MarginalParser{Date: model.DateOf(date)}
}

func (p *MarginalParser) Parse(r io.Reader) ([]model.PriceRecord, error) {
	cr := newSemicolonReader(charmap.Windows1252.NewDecoder().Reader(r))

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("reading marginal file title: %w", err)
	}

	var records []model.PriceRecord
	lineNum := 1
	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading marginal line %d: %w", lineNum, err)
		}

		period, err := strconv.Atoi(field(record, 3))
		if err != nil {
			continue
		}
		pt, err := parseNumber(field(record, 4))
		if err != nil {
			continue
		}
		es, err := parseNumber(field(record, 5))
		if err != nil {
			continue
		}

		records = append(records, model.PriceRecord{Date: p.Date, Period: period, PricePT: pt, PriceES: es})
	}

	return records, nil
}
