package service

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"
)

// RenderIncomeChart 将收入时间序列渲染为 PNG 折线图
// 序列为空或全为 0 时返回 nil（无可绘制数据）
func RenderIncomeChart(buckets []IncomeBucket) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, nil
	}
	hasData := false
	for _, b := range buckets {
		if b.Amount != 0 {
			hasData = true
			break
		}
	}
	if !hasData {
		return nil, nil
	}

	xValues := make([]float64, len(buckets))
	yValues := make([]float64, len(buckets))
	for i, b := range buckets {
		xValues[i] = float64(i)
		yValues[i] = b.Amount
	}

	// 横轴标签过密时按步长抽样
	step := len(buckets) / 12
	if step < 1 {
		step = 1
	}
	ticks := []chart.Tick{}
	for i := 0; i < len(buckets); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: buckets[i].Date})
	}

	graph := chart.Chart{
		Width:  1200,
		Height: 500,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 40},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Style: chart.Style{FontSize: 10},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Income",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					FillColor:   chart.ColorBlue.WithAlpha(40),
				},
			},
		},
	}

	buf := new(bytes.Buffer)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
