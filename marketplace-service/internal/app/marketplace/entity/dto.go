package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterUserRequest - POST /users. Роль от клиента не принимается.
type RegisterUserRequest struct {
	UserEmail string `json:"userEmail" validate:"required,emailshape"`
	Name      string `json:"name"`
	PhotoURL  string `json:"photoURL"`
}

func (RegisterUserRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"UserEmail": "Valid user email is required",
	}
}

type CreateServiceRequest struct {
	ServiceName string `json:"serviceName" validate:"required,trimmin=3"`
	ImageURL    string `json:"imageUrl" validate:"required,url"`
	Description string `json:"description" validate:"required,trimmin=10"`
	Price       Number `json:"price" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required,trimmin=2"`
}

func (CreateServiceRequest) ValidationMessages() map[string]string {
	return serviceMessages
}

// UpdateServiceRequest - PATCH /services/:id, проверяются только переданные поля
type UpdateServiceRequest struct {
	ServiceName *string `json:"serviceName" validate:"omitnil,trimmin=3"`
	ImageURL    *string `json:"imageUrl" validate:"omitnil,url"`
	Description *string `json:"description" validate:"omitnil,trimmin=10"`
	Price       *Number `json:"price" validate:"omitnil,gt=0"`
	Category    *string `json:"category" validate:"omitnil,trimmin=2"`
}

func (UpdateServiceRequest) ValidationMessages() map[string]string {
	return serviceMessages
}

// IsEmpty - в запросе нет ни одного изменяемого поля
func (r *UpdateServiceRequest) IsEmpty() bool {
	return r.ServiceName == nil && r.ImageURL == nil && r.Description == nil && r.Price == nil && r.Category == nil
}

var serviceMessages = map[string]string{
	"ServiceName": "Service name must be at least 3 characters long",
	"ImageURL":    "Valid image URL is required",
	"Description": "Description must be at least 10 characters long",
	"Price":       "Valid price is required",
	"Category":    "Category is required",
}

type CreateBookingRequest struct {
	ServiceID     string `json:"serviceId" validate:"required"`
	ServiceName   string `json:"serviceName" validate:"required,trimmin=2"`
	CustomerEmail string `json:"customerEmail" validate:"required,emailshape"`
	Price         Number `json:"Price" validate:"required,gt=0"`
	BookingDate   string `json:"bookingDate" validate:"required"`
}

func (CreateBookingRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"ServiceID":     "Service ID is required",
		"ServiceName":   "Service name is required",
		"CustomerEmail": "Valid customer email is required",
		"Price":         "Valid price is required",
		"BookingDate":   "Booking date is required",
	}
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,trimmin=1"`
}

func (UpdateBookingStatusRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Status": "Status is required",
	}
}

type CreateReviewRequest struct {
	User    string `json:"user" validate:"required,trimmin=2"`
	Rating  Number `json:"rating" validate:"required,integral,min=1,max=5"`
	Comment string `json:"comment" validate:"required,trimmin=5"`
}

func (CreateReviewRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"User":    "User name is required",
		"Rating":  "Rating must be between 1 and 5",
		"Comment": "Comment must be at least 5 characters long",
	}
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin customer provider"`
}

func (UpdateRoleRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Role": "Role must be one of admin, customer, provider",
	}
}

// PriceRange - фильтр /filter-services, nil означает отсутствие границы
type PriceRange struct {
	Min *float64
	Max *float64
}

// InsertResult повторяет ответ драйвера на insertOne
type InsertResult struct {
	Acknowledged bool               `json:"acknowledged"`
	InsertedID   primitive.ObjectID `json:"insertedId"`
}

// UpdateResult повторяет ответ драйвера на updateOne
type UpdateResult struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

// DeleteResult повторяет ответ драйвера на deleteOne
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse - тело ошибки. Error опускается в production, Errors - список нарушений валидации.
type ErrorResponse struct {
	Message string   `json:"message"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

type StatsResponse struct {
	TotalUsers     int64     `json:"totalUsers"`
	TotalServices  int64     `json:"totalServices"`
	TotalBookings  int64     `json:"totalBookings"`
	RecentServices []Service `json:"recentServices"`
	RecentBookings []Booking `json:"recentBookings"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    float64   `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}
