// Package model はドメインモデルを定義する。
package model

import "time"

// ProductType は製品種別の列挙を表す。
type ProductType string

const (
	// ProductTypePreroll はプリロール。
	ProductTypePreroll ProductType = "Pre-roll"
	// ProductTypeFlower はフラワー。
	ProductTypeFlower ProductType = "Flower"
	// ProductTypeCart はカート。
	ProductTypeCart ProductType = "Cart"
	// ProductTypeEdible はエディブル。
	ProductTypeEdible ProductType = "Edible"
	// ProductTypeDab はダブ。
	ProductTypeDab ProductType = "Dab"
)

// ProductTypes は有効な製品種別の一覧。
var ProductTypes = []ProductType{
	ProductTypePreroll,
	ProductTypeFlower,
	ProductTypeCart,
	ProductTypeEdible,
	ProductTypeDab,
}

// Valid は有効な製品種別かどうかを返す。
func (p ProductType) Valid() bool {
	for _, t := range ProductTypes {
		if p == t {
			return true
		}
	}
	return false
}

// SourceType は食べ物の入手元種別の列挙を表す。
type SourceType string

const (
	// SourceTypeHomemade は自炊。
	SourceTypeHomemade SourceType = "Homemade"
	// SourceTypeFastFood はファストフード。
	SourceTypeFastFood SourceType = "Fast food"
	// SourceTypeRestaurant はレストラン。
	SourceTypeRestaurant SourceType = "Restaurant"
	// SourceTypeGasStation はガソリンスタンド。
	SourceTypeGasStation SourceType = "Gas station"
	// SourceTypeOther はその他。
	SourceTypeOther SourceType = "Other"
)

// SourceTypes は有効な入手元種別の一覧。
var SourceTypes = []SourceType{
	SourceTypeHomemade,
	SourceTypeFastFood,
	SourceTypeRestaurant,
	SourceTypeGasStation,
	SourceTypeOther,
}

// Valid は有効な入手元種別かどうかを返す。
func (s SourceType) Valid() bool {
	for _, t := range SourceTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Session は製品使用イベント（ログの前半）を表す。
// 作成後は更新も削除もされない。任意項目はNULL保存のためポインタで持つ。
type Session struct {
	ID          string
	StrainName  *string
	ProductType ProductType
	Brand       *string
	HighRating  int
	AccountID   string
	CreatedAt   time.Time
}

// Munchie は食事イベント（ログの後半）を表す。
// 必ず1つのSessionに属し、作成順序（Session→Munchie）でFK依存を満たす。
type Munchie struct {
	ID          string
	SessionID   string
	FoodName    *string
	SourceType  SourceType
	Rating      int
	Description *string
	CreatedAt   time.Time
}

// FeedRecord はMunchieを親Sessionのstrain/製品種別と所有アカウントの
// ユーザー名で平坦化した読み取り専用ビュー。永続化されず、読み込みごとに再構築される。
type FeedRecord struct {
	MunchieID   string
	SessionID   string
	FoodName    *string
	SourceType  SourceType
	Rating      int
	Description *string
	CreatedAt   time.Time
	StrainName  *string
	ProductType ProductType
	AccountID   string
	Username    string
}
