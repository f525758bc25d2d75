package derived

import (
	"fmt"
	"math"

	"engcli/internal/table"
	"engcli/pkg/contracts/domain"
)

const cylinderCount = 16

// CylinderPortColumns returns the exhaust port temperature headers of n cylinders
func CylinderPortColumns(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Engine Exhaust Gas Port %d Temperature [Deg. C]", i+1)
	}
	return out
}

func cylinderTransformerColumns(n int) []string {
	out := make([]string, 0, 2*n)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("Cylinder # %d Transformer Secondary Output Voltage Percentage [%%]", i))
	}
	// some firmware drops the space after the hash
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("Cylinder #%d Transformer Secondary Output Voltage Percentage [%%]", i))
	}
	return out
}

// CylinderExhaustSpreadRule computes max minus min of the exhaust port
// temperatures for the multi-cylinder gas engines.
func CylinderExhaustSpreadRule() Rule {
	ports := CylinderPortColumns(cylinderCount)
	extra := append([]string{}, ports...)
	extra = append(extra, cylinderTransformerColumns(cylinderCount)...)
	return Rule{
		Name:         "cylinder-exhaust-spread",
		Assets:       []string{"WPW00989", "WPW00990", "WPW00998", "WPW01003"},
		ExtraColumns: extra,
		Output:       domain.ColCylExhSpread,
		Compute:      SpreadCompute(domain.ColCylExhSpread, ports),
	}
}

// SpreadCompute returns a ComputeFunc giving, per row, the max minus min of
// the non-null numeric values among columns. It computes nothing when none
// of the columns exist.
func SpreadCompute(output string, columns []string) ComputeFunc {
	return func(t *table.Table) (*table.Column, error) {
		var present []*table.Column
		for _, name := range columns {
			if c := t.Column(name); c != nil {
				present = append(present, c)
			}
		}
		if len(present) == 0 {
			return nil, nil
		}
		values := make([]float64, t.Len())
		for i := range values {
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, c := range present {
				v, ok := c.Float(i)
				if !ok {
					continue
				}
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
			if math.IsInf(lo, 1) {
				values[i] = math.NaN()
				continue
			}
			values[i] = hi - lo
		}
		return table.FloatColumn(output, values), nil
	}
}

// GeneratorElectricalRule keeps the generator AC measurements of genset assets.
func GeneratorElectricalRule() Rule {
	return Rule{
		Name: "generator-electrical",
		Assets: []string{
			"TWM03681", "TWM03691", "TWM03584", "TWM03583", "MCW10797",
			"TLD01703", "TLD01704", "TLD01706", "JSC25964", "MBD09997",
			"TWM01585", "TWM01586", "SM601768", "TLD01787", "TWM05916",
		},
		ExtraColumns: []string{
			"Generator Average Line-Neutral AC RMS Voltage [volts]",
			"Generator Average Line-Line AC RMS Voltage [volts]",
			"Generator Phase BC Line-Line AC RMS Voltage [volts]",
			"Generator Phase B Line-Neutral AC RMS Voltage [volts]",
			"Generator Phase CA Line-Line AC RMS Voltage [volts]",
			"Generator Phase A Line-Neutral AC RMS Voltage [volts]",
			"Generator Phase AB Line-Line AC RMS Voltage [volts]",
			"Generator Phase C Line-Neutral AC RMS Voltage [volts]",
			"Generator Phase B AC RMS Current [amps]",
			"Generator Phase A AC RMS Current [amps]",
			"Generator Phase C AC RMS Current [amps]",
			"Generator Average AC RMS Current [amps]",
			"Generator Average AC Frequency [Hz]",
		},
	}
}

// BankSpread sets EXH_DIFF to the absolute difference between the left and
// right exhaust banks. When either bank column is missing EXH_DIFF is all null.
func BankSpread(t *table.Table) *table.Table {
	left, right := t.Column(domain.ColExhLeft), t.Column(domain.ColExhRight)
	if left == nil || right == nil {
		return t.MustWith(table.NullColumn(domain.ColExhDiff, t.Len()))
	}
	values := make([]float64, t.Len())
	for i := range values {
		l, okL := left.Float(i)
		r, okR := right.Float(i)
		if !okL || !okR {
			values[i] = math.NaN()
			continue
		}
		values[i] = math.Abs(l - r)
	}
	return t.MustWith(table.FloatColumn(domain.ColExhDiff, values))
}
