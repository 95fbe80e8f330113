package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/fitrank/pkg/errors"
)

func TestSSE(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     []float64
		yPred     []float64
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     []float64{1.0, 2.0, 3.0},
			yPred:     []float64{1.0, 2.0, 3.0},
			want:      0.0,
			tolerance: 1e-12,
		},
		{
			name:      "constant offset",
			yTrue:     []float64{1.0, 2.0, 3.0},
			yPred:     []float64{1.1, 2.1, 3.1},
			want:      0.03, // 3 * 0.1²
			tolerance: 1e-12,
		},
		{
			name:    "length mismatch",
			yTrue:   []float64{1.0, 2.0, 3.0},
			yPred:   []float64{1.0, 2.0},
			wantErr: true,
		},
		{
			name:    "empty",
			yTrue:   nil,
			yPred:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SSE(tt.yTrue, tt.yPred)

			if (err != nil) != tt.wantErr {
				t.Errorf("SSE() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("SSE() = %v, want %v (tolerance: %v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestSSEDimensionError(t *testing.T) {
	_, err := SSE([]float64{1, 2}, []float64{1})
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %T", err)
	}
	if dimErr.Expected != 2 || dimErr.Got != 1 {
		t.Errorf("DimensionError = %+v", dimErr)
	}
}

func TestSST(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		want    float64
		wantErr bool
	}{
		{name: "simple", yTrue: []float64{1, 2, 3}, want: 2.0},
		{name: "constant", yTrue: []float64{4, 4, 4}, want: 0.0},
		{name: "single", yTrue: []float64{7}, want: 0.0},
		{name: "empty", yTrue: []float64{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SST(tt.yTrue)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SST() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("SST() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMSEAndRMSE(t *testing.T) {
	yTrue := []float64{10.0, 20.0, 30.0}
	yPred := []float64{12.0, 18.0, 33.0}

	mse, err := MSE(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	// ((2)^2 + (-2)^2 + (3)^2) / 3 = 17/3
	if math.Abs(mse-17.0/3.0) > 1e-10 {
		t.Errorf("MSE() = %v, want %v", mse, 17.0/3.0)
	}

	rmse, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(rmse-math.Sqrt(17.0/3.0)) > 1e-10 {
		t.Errorf("RMSE() = %v, want %v", rmse, math.Sqrt(17.0/3.0))
	}

	if _, err := RMSE(yTrue, yPred[:1]); err == nil {
		t.Error("RMSE() expected error for length mismatch")
	}
}

func TestMAE(t *testing.T) {
	got, err := MAE([]float64{1.0, 2.0, 3.0, 4.0}, []float64{1.5, 2.5, 2.5, 3.5})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.5) > 1e-10 {
		t.Errorf("MAE() = %v, want 0.5", got)
	}

	if _, err := MAE(nil, nil); err == nil {
		t.Error("MAE() expected error for empty input")
	}
}
