package backend

import (
	"bytes"
	"encoding/json"
)

// ID accepts both JSON strings and numbers; the backend is not consistent.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// UserType selects which login flow and dashboard a session belongs to.
type UserType string

const (
	UserTypeCustomer UserType = "user"
	UserTypeWorker   UserType = "worker"
)

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type CustomerCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type WorkerCredentials struct {
	WorkerID string `json:"worker_id"`
	Password string `json:"password"`
}

type UserProfile struct {
	ID            ID     `json:"id"`
	FullName      string `json:"fullname"`
	Email         string `json:"email"`
	BagsReturned  int    `json:"total_bag_returned"`
	BagsCollected int    `json:"total_bag_collected"`
}

type WorkerProfile struct {
	ID          ID     `json:"id"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	BagsScanned int    `json:"total_beg_scanned"`
	FaultScans  int    `json:"total_fault_scan"`
}

type EarningTransaction struct {
	ID          ID     `json:"id"`
	BagID       string `json:"bagId"`
	ReturnDate  string `json:"returnDate"`
	CoinsEarned int    `json:"coinsEarned"`
}

type SpendingTransaction struct {
	ID              ID     `json:"id"`
	TransactionDate string `json:"transactionDate"`
	CoinsSpent      int    `json:"coinsSpent"`
}

type Transactions struct {
	Earning  []EarningTransaction  `json:"earningTransactions"`
	Spending []SpendingTransaction `json:"spendingTransactions"`
}

type RedeemResult struct {
	Message        string `json:"message,omitempty"`
	RemainingCoins *int   `json:"remaining_coins,omitempty"`
}

// ScanUpload is the multipart payload sent to the scanning endpoint.
type ScanUpload struct {
	Image     []byte
	Filename  string
	UserID    string
	ScanMode  string
	WorkerID  string
	QRPayload string
}

type ScanResult struct {
	BagID   string `json:"bag_id"`
	Message string `json:"message,omitempty"`
}

type BagEvent struct {
	ID         ID     `json:"id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Action     string `json:"action"`
	WorkerID   string `json:"workerId"`
	WorkerName string `json:"workerName"`
	Status     string `json:"status"`
}

type BagSummary struct {
	BagID        string     `json:"bagId"`
	UserID       string     `json:"userId,omitempty"`
	Status       string     `json:"status"`
	TotalScans   int        `json:"totalScans"`
	FaultCount   int        `json:"faultCount"`
	LastScanType string     `json:"lastScanType,omitempty"`
	LastWorker   string     `json:"lastWorker,omitempty"`
	Transactions []BagEvent `json:"transactions"`
}
