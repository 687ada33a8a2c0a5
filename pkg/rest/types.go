// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

// Deal Карточка акции
type Deal struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	RestaurantID string `json:"restaurantId"`
	Restaurant   string `json:"restaurant"`
	ImageURL     string `json:"imageUrl,omitempty"`
	AuthorID     string `json:"authorId"`
	Author       string `json:"author"`
	Votes        int    `json:"votes"`
	IsUpvoted    bool   `json:"isUpvoted"`
	IsDownvoted  bool   `json:"isDownvoted"`
	IsFavorited  bool   `json:"isFavorited"`
	CreatedAt    string `json:"createdAt"`
}

type NewDeal struct {
	Title        string `json:"title" validate:"required,min=3,max=120"`
	Description  string `json:"description" validate:"max=2000"`
	RestaurantID string `json:"restaurantId" validate:"required"`
	ImageURL     string `json:"imageUrl" validate:"omitempty,url"`
}

type VoteRequest struct {
	Kind string `json:"kind" validate:"required,oneof=upvote downvote"`
}

type ReportRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type SessionRequest struct {
	UserID      string `json:"userId" validate:"required"`
	AccessToken string `json:"accessToken" validate:"required"`
}

type LocationRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=80"`
	AvatarURL   string `json:"avatarUrl" validate:"omitempty,url"`
	Bio         string `json:"bio" validate:"max=500"`
}

type Restaurant struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
