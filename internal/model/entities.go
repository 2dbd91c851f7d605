package model

import "time"

// User is the public view of a backend account.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name,omitempty"`
	IsActive       bool   `json:"is_active"`
	IsSuperuser    bool   `json:"is_superuser"`
	IsAutoApproved bool   `json:"is_auto_approved"`
}

// Client is a customer whose documents are classified and processed.
type Client struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	Clasifier string `json:"clasifier"`
	Structure string `json:"structure"`
}

// Order is an uploaded order document and its processing state.
type Order struct {
	ID               string     `json:"id"`
	OwnerID          string     `json:"owner_id"`
	ClientName       string     `json:"client_name,omitempty"`
	BaseDocumentName string     `json:"base_document_name,omitempty"`
	DateProcessed    *time.Time `json:"date_processed,omitempty"`
	DateApproved     *time.Time `json:"date_approved,omitempty"`
	IsApproved       *bool      `json:"is_approved,omitempty"`
}

// Email is an Outlook mailbox watched for incoming orders.
type Email struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Email       string `json:"email"`
	Filter      string `json:"filter"`
	IsActive    bool   `json:"is_active"`
	IsConnected bool   `json:"is_connected"`
}

// Prompt is a versioned LLM prompt used by the document pipeline.
type Prompt struct {
	ID        string    `json:"id"`
	Query     string    `json:"query,omitempty"`
	Service   string    `json:"service,omitempty"`
	Model     string    `json:"model,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Collections lists the REST collections the console can browse, in tab order.
var Collections = []string{"users", "clients", "orders", "emails", "prompts"}
