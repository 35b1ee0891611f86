package store

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	StatusRequested   = "Requested"
	StatusUnderReview = "Under Review"
	StatusPending     = "Pending"
	StatusApproved    = "Approved"
	StatusRejected    = "Rejected"
)

const (
	TransactionCredit   = "Credit"
	TransactionDebit    = "Debit"
	TransactionTransfer = "Transfer"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID    int64  `bun:"id,pk,autoincrement" json:"id"`
	Name  string `bun:"name,notnull" json:"name"`
	Email string `bun:"email,unique" json:"email"`
}

type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	UserID      int64   `bun:"user_id,notnull" json:"user_id"`
	AccountType string  `bun:"account_type" json:"account_type"`
	Balance     float64 `bun:"balance,notnull,default:0" json:"balance"`
}

type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	AccountID       int64     `bun:"account_id,notnull" json:"account_id"`
	TransactionType string    `bun:"transaction_type" json:"transaction_type"`
	Amount          float64   `bun:"amount" json:"amount"`
	Timestamp       time.Time `bun:"timestamp,notnull" json:"timestamp"`
	Status          string    `bun:"status" json:"status"`
	Description     string    `bun:"description" json:"description"`
}

type ServiceRequest struct {
	bun.BaseModel `bun:"table:service_requests,alias:sr"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID      int64     `bun:"user_id,notnull" json:"user_id"`
	ServiceType string    `bun:"service_type" json:"service_type"`
	Details     string    `bun:"details" json:"details"`
	Status      string    `bun:"status,notnull" json:"status"`
	Timestamp   time.Time `bun:"timestamp,notnull" json:"timestamp"`
}

// TransactionView is a transaction joined with its owner's name.
type TransactionView struct {
	ID              int64     `bun:"id" json:"id"`
	Timestamp       time.Time `bun:"timestamp" json:"timestamp"`
	CustomerName    string    `bun:"customer_name" json:"customer_name"`
	Description     string    `bun:"description" json:"description"`
	Amount          float64   `bun:"amount" json:"amount"`
	TransactionType string    `bun:"transaction_type" json:"transaction_type"`
	Status          string    `bun:"status" json:"status"`
}

// Overview summarises the bank for the back office.
type Overview struct {
	TotalCustomers   int     `json:"total_customers"`
	TotalDeposits    float64 `json:"total_deposits"`
	PendingApprovals int     `json:"pending_approvals"`
}

// Counts is the number of rows per core table.
type Counts struct {
	Users        int `json:"users"`
	Accounts     int `json:"accounts"`
	Transactions int `json:"transactions"`
}
