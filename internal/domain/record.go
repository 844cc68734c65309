package domain

// Rating is the four-level preference a user gives a sake.
type Rating string

const (
	RatingVeryGood Rating = "VERY_GOOD"
	RatingGood     Rating = "GOOD"
	RatingBad      Rating = "BAD"
	RatingVeryBad  Rating = "VERY_BAD"
)

// Ratings lists every accepted rating code, best first.
var Ratings = []Rating{RatingVeryGood, RatingGood, RatingBad, RatingVeryBad}

func (r Rating) Valid() bool {
	switch r {
	case RatingVeryGood, RatingGood, RatingBad, RatingVeryBad:
		return true
	}
	return false
}

// Label returns the display label shown to users.
func (r Rating) Label() string {
	switch r {
	case RatingVeryGood:
		return "非常に好き"
	case RatingGood:
		return "好き"
	case RatingBad:
		return "合わない"
	case RatingVeryBad:
		return "非常に合わない"
	}
	return ""
}

// Field bounds shared by validation and storage.
const (
	BrandMinLen         = 1
	BrandMaxLen         = 64
	ImpressionMinLen    = 1
	ImpressionMaxLen    = 1000
	LabelImageKeyMaxLen = 1024
)

// DrinkingRecord is the API representation of a recorded impression.
type DrinkingRecord struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	Brand         string `json:"brand"`
	Impression    string `json:"impression"`
	Rating        Rating `json:"rating"`
	LabelImageKey string `json:"labelImageKey,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// StoredRecord is a drinking-records table item.
// userId is the partition key and recordId the sort key.
type StoredRecord struct {
	UserID        string `dynamodbav:"userId"`
	RecordID      string `dynamodbav:"recordId"`
	SakeName      string `dynamodbav:"sake_name"`
	Impression    string `dynamodbav:"impression"`
	Rating        Rating `dynamodbav:"rating"`
	LabelImageKey string `dynamodbav:"label_image_key,omitempty"`
	CreatedAt     string `dynamodbav:"created_at"`
	UpdatedAt     string `dynamodbav:"updated_at"`
}

// RecordPatch is a partial API-shaped record. Nil fields are absent.
type RecordPatch struct {
	Brand         *string
	Impression    *string
	Rating        *Rating
	LabelImageKey *string
}

// Empty reports whether no field is present.
func (p RecordPatch) Empty() bool {
	return p.Brand == nil && p.Impression == nil && p.Rating == nil && p.LabelImageKey == nil
}

// StoredPatch is a partial storage-shaped record. UserID and RecordID
// identify the item and are never written as attributes on update.
type StoredPatch struct {
	UserID        string
	RecordID      string
	SakeName      *string
	Impression    *string
	Rating        *Rating
	LabelImageKey *string
	UpdatedAt     string
}
