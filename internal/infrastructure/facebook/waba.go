package facebook

import (
	"context"
	"net/http"
	"net/url"

	"github.com/marketplace/backend/internal/domain/integration"
)

const phoneNumberFields = "display_phone_number,verified_name,quality_rating"

// GetWABA reads the account fields used during provisioning
func (c *Client) GetWABA(ctx context.Context, wabaID string) (*integration.WABA, error) {
	var resp struct {
		integration.WABA
		OwnerBusinessInfo struct {
			ID string `json:"id"`
		} `json:"owner_business_info"`
	}
	err := c.do(ctx, request{
		operation: "get_waba",
		method:    http.MethodGet,
		path:      url.PathEscape(wabaID),
		query:     url.Values{"fields": {"id,name,currency,message_template_namespace,owner_business_info"}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	waba := resp.WABA
	waba.OwnerBusinessID = resp.OwnerBusinessInfo.ID
	if waba.ID == "" {
		waba.ID = wabaID
	}
	return &waba, nil
}

// AssignSystemUser gives the platform system user MANAGE on the account
func (c *Client) AssignSystemUser(ctx context.Context, wabaID string) error {
	return c.do(ctx, request{
		operation: "assign_system_user",
		method:    http.MethodPost,
		path:      url.PathEscape(wabaID) + "/assigned_users",
		query:     url.Values{"user": {c.systemUserID}, "tasks": {"MANAGE"}},
	}, nil)
}

// ShareCreditLine attaches the platform credit line and returns the
// allocation config id
func (c *Client) ShareCreditLine(ctx context.Context, wabaID, currency string) (string, error) {
	var resp struct {
		AllocationConfigID string `json:"allocation_config_id"`
	}
	err := c.do(ctx, request{
		operation: "share_credit_line",
		method:    http.MethodPost,
		path:      url.PathEscape(c.creditLineID) + "/whatsapp_credit_sharing_and_attach",
		query:     url.Values{"waba_id": {wabaID}, "waba_currency": {currency}},
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AllocationConfigID, nil
}

// SubscribeApp subscribes the platform app to the account webhooks
func (c *Client) SubscribeApp(ctx context.Context, wabaID string) error {
	return c.do(ctx, request{
		operation: "subscribe_app",
		method:    http.MethodPost,
		path:      url.PathEscape(wabaID) + "/subscribed_apps",
	}, nil)
}

// RegisterPhoneNumber registers a phone number for Cloud API messaging
func (c *Client) RegisterPhoneNumber(ctx context.Context, phoneNumberID, pin string) error {
	form := url.Values{"messaging_product": {"whatsapp"}, "pin": {pin}}
	return c.do(ctx, formRequest("register_phone_number", url.PathEscape(phoneNumberID)+"/register", form), nil)
}

// GetPhoneNumber reads a phone number with token, or the system-user token
// when token is empty
func (c *Client) GetPhoneNumber(ctx context.Context, token, phoneNumberID string) (*integration.PhoneNumber, error) {
	var phone integration.PhoneNumber
	err := c.do(ctx, request{
		operation: "get_phone_number",
		method:    http.MethodGet,
		path:      url.PathEscape(phoneNumberID),
		query:     url.Values{"fields": {phoneNumberFields}},
		token:     token,
	}, &phone)
	if err != nil {
		return nil, err
	}
	if phone.ID == "" {
		phone.ID = phoneNumberID
	}
	return &phone, nil
}

// ListPhoneNumbers lists the phone numbers of an account
func (c *Client) ListPhoneNumbers(ctx context.Context, wabaID string) ([]integration.PhoneNumber, error) {
	var resp struct {
		Data []integration.PhoneNumber `json:"data"`
	}
	err := c.do(ctx, request{
		operation: "list_phone_numbers",
		method:    http.MethodGet,
		path:      url.PathEscape(wabaID) + "/phone_numbers",
		query:     url.Values{"fields": {"id," + phoneNumberFields}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DebugToken inspects a user access token
func (c *Client) DebugToken(ctx context.Context, inputToken string) (*integration.TokenInfo, error) {
	var resp struct {
		Data integration.TokenInfo `json:"data"`
	}
	err := c.do(ctx, request{
		operation: "debug_token",
		method:    http.MethodGet,
		path:      "debug_token",
		query:     url.Values{"input_token": {inputToken}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}
