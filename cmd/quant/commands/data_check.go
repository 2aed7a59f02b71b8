package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/vwapcast/internal/contracts"
	"github.com/wonny/vwapcast/internal/s0_data"
	"github.com/wonny/vwapcast/internal/s0_data/quality"
	"github.com/wonny/vwapcast/pkg/config"
)

// dataCheckCmd represents the data check command
var dataCheckCmd = &cobra.Command{
	Use:   "data-check",
	Short: "입력 데이터 상태 확인",
	Long: `입력 레코드를 로드해 종목별 상태를 확인합니다.

확인 항목:
- 전체 행 수, 종목 수
- 종목별 행 수, 기간, 날짜 정렬 여부
- 학습 최소 행 수(min_rows) 미달 종목
- 숫자 컬럼별 결측 비율

--import 를 주면 아카이브 레코드를 PostgreSQL(market.nifty_daily)에 적재합니다.

Example:
  go run ./cmd/quant data-check --archive stockdata.zip
  go run ./cmd/quant data-check --archive stockdata.zip --import`,
	RunE: runDataCheck,
}

var (
	checkImport      bool
	checkMinCoverage float64
)

func init() {
	rootCmd.AddCommand(dataCheckCmd)

	// Flags (shared with train)
	dataCheckCmd.Flags().StringVar(&trainArchive, "archive", "", "zip archive or csv, local path or http(s) URL")
	dataCheckCmd.Flags().StringVar(&trainCSVName, "csv-name", "", "csv entry inside the archive")
	dataCheckCmd.Flags().StringVar(&trainSource, "source", "", "data source: archive|postgres (default: DATA_SOURCE)")
	dataCheckCmd.Flags().BoolVar(&trainRefresh, "refresh", false, "re-download a remote archive")
	dataCheckCmd.Flags().BoolVar(&checkImport, "import", false, "load the records into PostgreSQL")
	dataCheckCmd.Flags().Float64Var(&checkMinCoverage, "min-coverage", quality.DefaultConfig().MinCoverage, "flag columns with a lower non-missing ratio")
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := loadApp(appOptions{override: applyTrainFlags, wantDB: checkImport})
	if err != nil {
		return err
	}
	defer a.Close()

	if checkImport && a.cfg.Data.Source != config.SourceArchive {
		return fmt.Errorf("--import reads from an archive, got source=%s", a.cfg.Data.Source)
	}
	if checkImport && a.db == nil {
		return fmt.Errorf("--import requires DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	source, err := a.dataSource(ctx, trainRefresh)
	if err != nil {
		return err
	}

	records, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", source.Name(), err)
	}

	gate := quality.NewQualityGate(quality.Config{
		MinRows:     a.train.Split.MinRows,
		MinCoverage: checkMinCoverage,
	})
	snap := gate.Check(records)

	PrintHeader(out, "Data Check: "+source.Name())
	if err := printSnapshot(out, snap); err != nil {
		return err
	}

	if checkImport {
		repo := s0_data.NewPriceRepository(a.db.Pool, a.log.Zerolog())
		if err := repo.SaveBatch(ctx, records); err != nil {
			return fmt.Errorf("import records: %w", err)
		}
		counts, err := repo.CountBySymbol(ctx)
		if err != nil {
			return fmt.Errorf("count imported records: %w", err)
		}
		fmt.Fprintln(out)
		PrintSuccess(out, fmt.Sprintf("Imported %d records (%d symbols in market.nifty_daily)", len(records), len(counts)))
	}

	return nil
}

func printSnapshot(out io.Writer, snap *quality.Snapshot) error {
	PrintKeyValue(out, "Rows", fmt.Sprintf("%d", snap.TotalRows), 12)
	PrintKeyValue(out, "Symbols", fmt.Sprintf("%d", len(snap.Symbols)), 12)
	PrintKeyValue(out, "Too short", fmt.Sprintf("%d", snap.Insufficient), 12)
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Symbol\tRows\tFirst\tLast\tOrdered\tStatus")
	for _, s := range snap.Symbols {
		status := "ok"
		if s.Insufficient {
			status = "too short"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%v\t%s\n",
			s.Symbol, s.Rows,
			s.First.Format(s0_data.DateLayout), s.Last.Format(s0_data.DateLayout),
			s.Ordered, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Column\tCoverage")
	for _, c := range contracts.NumericColumns {
		fmt.Fprintf(tw, "%s\t%.2f%%\n", c, snap.Coverage[c]*100)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	for _, c := range snap.LowCoverage {
		PrintWarning(out, fmt.Sprintf("%s coverage %.2f%% is below threshold", c, snap.Coverage[c]*100))
	}
	if snap.Passed() {
		PrintSuccess(out, "Every company has enough rows to train")
	} else {
		PrintWarning(out, "Some companies will be reported as insufficient_data")
	}
	return nil
}
