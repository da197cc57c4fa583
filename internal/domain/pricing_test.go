package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func centsPtr(v int64) *int64   { return &v }
func pctPtr(v float64) *float64 { return &v }

func TestResolveUnitPrices(t *testing.T) {
	tests := []struct {
		name         string
		src          PriceSource
		wantActual   int64
		wantOriginal int64
		wantOK       bool
	}{
		{
			name: "variant actual price wins over everything",
			src: PriceSource{
				VariantActualPrice: centsPtr(900),
				ItemActualPrice:    centsPtr(800),
				VariantPrice:       centsPtr(700),
				ItemTotalPrice:     centsPtr(600),
			},
			wantActual:   900,
			wantOriginal: 900,
			wantOK:       true,
		},
		{
			name: "falls back to item actual price",
			src: PriceSource{
				ItemActualPrice: centsPtr(800),
				VariantPrice:    centsPtr(700),
			},
			wantActual:   800,
			wantOriginal: 800,
			wantOK:       true,
		},
		{
			name:         "falls back to variant price",
			src:          PriceSource{VariantPrice: centsPtr(700), ItemTotalPrice: centsPtr(600)},
			wantActual:   700,
			wantOriginal: 700,
			wantOK:       true,
		},
		{
			name:         "falls back to item total price",
			src:          PriceSource{ItemTotalPrice: centsPtr(600)},
			wantActual:   600,
			wantOriginal: 600,
			wantOK:       true,
		},
		{
			name:   "no price fields at all",
			src:    PriceSource{DiscountPercent: pctPtr(10)},
			wantOK: false,
		},
		{
			name: "explicit original price preferred over back-calculation",
			src: PriceSource{
				VariantActualPrice:   centsPtr(900),
				VariantOriginalPrice: centsPtr(1200),
				DiscountPercent:      pctPtr(10),
			},
			wantActual:   900,
			wantOriginal: 1200,
			wantOK:       true,
		},
		{
			name: "original back-calculated from discount percent",
			src: PriceSource{
				VariantActualPrice: centsPtr(900),
				DiscountPercent:    pctPtr(10),
			},
			wantActual:   900,
			wantOriginal: 1000,
			wantOK:       true,
		},
		{
			name: "discount percent above 99 is clamped",
			src: PriceSource{
				VariantActualPrice: centsPtr(100),
				DiscountPercent:    pctPtr(150),
			},
			wantActual:   100,
			wantOriginal: 10000,
			wantOK:       true,
		},
		{
			name: "negative discount percent treated as zero",
			src: PriceSource{
				VariantActualPrice: centsPtr(900),
				DiscountPercent:    pctPtr(-5),
			},
			wantActual:   900,
			wantOriginal: 900,
			wantOK:       true,
		},
		{
			name: "original below actual is raised to actual",
			src: PriceSource{
				VariantActualPrice:   centsPtr(900),
				VariantOriginalPrice: centsPtr(500),
			},
			wantActual:   900,
			wantOriginal: 900,
			wantOK:       true,
		},
		{
			name:         "negative actual price floored at zero",
			src:          PriceSource{VariantActualPrice: centsPtr(-50)},
			wantActual:   0,
			wantOriginal: 0,
			wantOK:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, original, ok := ResolveUnitPrices(tt.src)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantActual, actual)
				assert.Equal(t, tt.wantOriginal, original)
			}
		})
	}
}

func TestResolveUnitPricesInvariant(t *testing.T) {
	// Whatever the inputs, actual never exceeds original.
	srcs := []PriceSource{
		{VariantActualPrice: centsPtr(999), VariantOriginalPrice: centsPtr(1)},
		{ItemActualPrice: centsPtr(1234), DiscountPercent: pctPtr(33)},
		{VariantPrice: centsPtr(5000), DiscountPercent: pctPtr(99)},
	}
	for _, src := range srcs {
		actual, original, ok := ResolveUnitPrices(src)
		assert.True(t, ok)
		assert.LessOrEqual(t, actual, original)
	}
}
