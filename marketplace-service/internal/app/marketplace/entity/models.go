package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
	RoleProvider = "provider"

	BookingStatusPending = "pending"
)

// Roles - допустимые значения User.Role
var Roles = []string{RoleAdmin, RoleCustomer, RoleProvider}

// User - зарегистрированный пользователь, userEmail уникален (индекс userEmail_unique)
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserEmail string             `json:"userEmail" bson:"userEmail"`
	Name      string             `json:"name,omitempty" bson:"name,omitempty"`
	PhotoURL  string             `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Role      string             `json:"role" bson:"role"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Service - услуга, которую предлагает провайдер (коллекция Services)
type Service struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ServiceName    string             `json:"serviceName" bson:"serviceName"`
	ImageURL       string             `json:"imageUrl" bson:"imageUrl"`
	Description    string             `json:"description" bson:"description"`
	Price          float64            `json:"price" bson:"price"`
	Category       string             `json:"category" bson:"category"`
	Email          string             `json:"Email" bson:"Email"` // email провайдера-владельца
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      *time.Time         `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	ServiceReviews []Review           `json:"serviceReviews" bson:"serviceReviews"`
}

// Review хранится только внутри Service.ServiceReviews, массив только дополняется
type Review struct {
	User          string    `json:"user" bson:"user"`
	Rating        int       `json:"rating" bson:"rating"`
	Comment       string    `json:"comment" bson:"comment"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	ReviewerEmail string    `json:"reviewerEmail" bson:"reviewerEmail"`
}

type Booking struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ServiceID     string             `json:"serviceId" bson:"serviceId"`
	ServiceName   string             `json:"serviceName" bson:"serviceName"`
	CustomerEmail string             `json:"customerEmail" bson:"customerEmail"`
	Price         float64            `json:"Price" bson:"Price"`
	BookingDate   string             `json:"bookingDate" bson:"bookingDate"`
	Email         string             `json:"Email" bson:"Email"` // email аутентифицированного заказчика
	Status        string             `json:"status" bson:"status"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// Testimonial - проекция услуги только с массивом отзывов
type Testimonial struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	ServiceReviews []Review           `json:"serviceReviews" bson:"serviceReviews"`
}

// MarketplaceEvent - доменное событие для Kafka
type MarketplaceEvent struct {
	EventType  string      `json:"event_type"`
	EntityID   string      `json:"entity_id"`
	ActorEmail string      `json:"actor_email,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       interface{} `json:"data,omitempty"`
}

const (
	EventUserRegistered       = "USER_REGISTERED"
	EventUserRoleChanged      = "USER_ROLE_CHANGED"
	EventServiceCreated       = "SERVICE_CREATED"
	EventServiceUpdated       = "SERVICE_UPDATED"
	EventServiceDeleted       = "SERVICE_DELETED"
	EventReviewAdded          = "REVIEW_ADDED"
	EventBookingCreated       = "BOOKING_CREATED"
	EventBookingStatusUpdated = "BOOKING_STATUS_UPDATED"
	EventBookingDeleted       = "BOOKING_DELETED"
)
