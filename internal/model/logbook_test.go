package model

import "testing"

func TestProductType_Valid(t *testing.T) {
	for _, pt := range ProductTypes {
		if !pt.Valid() {
			t.Errorf("ProductType(%q).Valid() = false, want true", pt)
		}
	}

	for _, invalid := range []ProductType{"", "Beverage", "flower", "PRE-ROLL"} {
		if invalid.Valid() {
			t.Errorf("ProductType(%q).Valid() = true, want false", invalid)
		}
	}
}

func TestSourceType_Valid(t *testing.T) {
	for _, st := range SourceTypes {
		if !st.Valid() {
			t.Errorf("SourceType(%q).Valid() = false, want true", st)
		}
	}

	for _, invalid := range []SourceType{"", "Vending machine", "homemade"} {
		if invalid.Valid() {
			t.Errorf("SourceType(%q).Valid() = true, want false", invalid)
		}
	}
}

// 列挙は定義順を保つ（UIのセレクトボックスの並び順に使われる）。
func TestEnumOrder(t *testing.T) {
	wantProducts := []ProductType{
		ProductTypePreroll, ProductTypeFlower, ProductTypeCart, ProductTypeEdible, ProductTypeDab,
	}
	for i, pt := range ProductTypes {
		if pt != wantProducts[i] {
			t.Errorf("ProductTypes[%d] = %q, want %q", i, pt, wantProducts[i])
		}
	}

	wantSources := []SourceType{
		SourceTypeHomemade, SourceTypeFastFood, SourceTypeRestaurant, SourceTypeGasStation, SourceTypeOther,
	}
	for i, st := range SourceTypes {
		if st != wantSources[i] {
			t.Errorf("SourceTypes[%d] = %q, want %q", i, st, wantSources[i])
		}
	}
}
