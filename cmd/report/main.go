// Command report prints the sales dashboard for one filter selection as text,
// and optionally writes the XLSX workbook and chart PNGs next to it.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"salesdash/internal/config"
	"salesdash/internal/engine"
	"salesdash/internal/log"
	"salesdash/internal/models"
	"salesdash/internal/presenter"

	"github.com/joho/godotenv"
)

// listFlag collects a repeatable flag. Set at least once, even to "", it
// constrains its column.
type listFlag struct {
	values []string
	set    bool
}

func (l *listFlag) String() string { return strings.Join(l.values, ",") }

func (l *listFlag) Set(v string) error {
	l.set = true
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			l.values = append(l.values, part)
		}
	}
	return nil
}

func main() {
	var category, region, payment, month listFlag
	configPath := flag.String("config", "", "path to a TOML config file")
	dataPath := flag.String("data", "", "sales CSV or XLSX file (overrides config)")
	xlsxOut := flag.String("xlsx", "", "also write the dashboard workbook to this path")
	chartDir := flag.String("charts", "", "also render every chart as PNG into this directory")
	topN := flag.Int("top", 0, "number of top products (overrides config)")
	flag.Var(&category, "category", "product category to include (repeatable or comma separated)")
	flag.Var(&region, "region", "region to include (repeatable or comma separated)")
	flag.Var(&payment, "payment", "payment method to include (repeatable or comma separated)")
	flag.Var(&month, "month", "month to include, 1-12 or name (repeatable or comma separated)")
	flag.Parse()

	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentApp, Output: os.Stderr})
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(logger, "failed to load config", err)
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *topN > 0 {
		cfg.Data.TopN = *topN
	}
	if err := cfg.Validate(); err != nil {
		fatal(logger.WithComponent(log.ComponentConfig), "invalid configuration", err)
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger = log.New(log.Config{Level: level, Component: log.ComponentApp, Output: os.Stderr})
	}

	// 1. Load
	table, err := engine.LoadFile(cfg.Data.Path)
	if err != nil {
		fatal(logger.WithComponent(log.ComponentLoader), "failed to load dataset", err)
	}
	logger.WithComponent(log.ComponentLoader).Debug("dataset loaded", log.FieldRows, table.Len(), log.FieldSource, cfg.Data.Path)

	// 2. Filter selection
	spec := engine.FilterSpec{}
	for col, f := range map[engine.Column]*listFlag{
		engine.ColumnCategory: &category,
		engine.ColumnRegion:   &region,
		engine.ColumnPayment:  &payment,
	} {
		if f.set {
			spec[col] = f.values
		}
	}
	if month.set {
		months, err := engine.ParseMonthValues(month.values)
		if err != nil {
			fatal(logger, "bad -month value", err)
		}
		spec[engine.ColumnMonth] = months
	}

	// 3. Aggregate and present
	data := engine.BuildDashboard(table, spec, cfg.Data.TopN)
	if err := presenter.WriteReport(os.Stdout, data); err != nil {
		fatal(logger, "failed to write report", err)
	}

	presentLog := logger.WithComponent(log.ComponentPresenter)
	if *xlsxOut != "" {
		if err := writeFile(*xlsxOut, func(f *os.File) error { return presenter.WriteWorkbook(f, data) }); err != nil {
			fatal(presentLog, "failed to write workbook", err)
		}
		presentLog.Info("workbook written", "path", *xlsxOut)
	}
	if *chartDir != "" {
		writeCharts(presentLog, *chartDir, data)
	}
}

func writeCharts(logger *log.Logger, dir string, data *models.DashboardData) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatal(logger, "failed to create chart directory", err)
	}
	for _, name := range presenter.Charts {
		path := filepath.Join(dir, name+".png")
		err := writeFile(path, func(f *os.File) error { return presenter.RenderChart(f, name, data) })
		if err != nil {
			// Empty views are skipped, the remaining charts are still useful
			logger.Warn("chart skipped", "chart", name, log.FieldError, err)
			os.Remove(path)
			continue
		}
		logger.Info("chart written", "path", path)
	}
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	os.Exit(1)
}
