package model

import "strings"

// 配送先情報
// Userに現在値、Orderにスナップショットとして埋め込む。
type ShippingInfo struct {
	Address    string `gorm:"type:varchar(255)" json:"address"`
	City       string `gorm:"type:varchar(255)" json:"city"`
	State      string `gorm:"type:varchar(100)" json:"state"`
	Country    string `gorm:"type:varchar(100)" json:"country"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
	PhoneNo    string `gorm:"type:varchar(30)" json:"phone_no"`
}

// 未入力の項目名を返す（全部埋まっていれば空）
func (s ShippingInfo) MissingFields() []string {
	missing := []string{}

	if strings.TrimSpace(s.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(s.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(s.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(s.Country) == "" {
		missing = append(missing, "country")
	}
	if strings.TrimSpace(s.PostalCode) == "" {
		missing = append(missing, "postal_code")
	}
	if strings.TrimSpace(s.PhoneNo) == "" {
		missing = append(missing, "phone_no")
	}

	return missing
}
