package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ashureev/agri-advisor/internal/domain"
)

// SignUpRequest carries the registration form fields.
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	UserType    string `json:"user_type"`
	Name        string `json:"name"`
	ICNo        string `json:"ic_no,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	CompanyType string `json:"company_type,omitempty"`
}

// SignUp registers a new account and returns the user ID to verify.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (int64, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("encode signup request: %w", err)
	}
	raw, err := c.callPublic(ctx, http.MethodPost, "/users/", bytes.NewReader(data), "application/json")
	if err != nil {
		return 0, err
	}
	var resp struct {
		Message string `json:"message"`
		UserID  int64  `json:"user_id"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("decode signup response: %w", err)
	}
	return resp.UserID, nil
}

// VerifyEmail submits the 6-digit verification code. The backend takes
// user_id and code as query parameters.
func (c *Client) VerifyEmail(ctx context.Context, userID int64, code string) error {
	q := url.Values{}
	q.Set("user_id", strconv.FormatInt(userID, 10))
	q.Set("code", code)
	_, err := c.callPublic(ctx, http.MethodPost, "/users/verify-email?"+q.Encode(), nil, "")
	return err
}

// Login exchanges form-encoded credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	raw, err := c.callPublic(ctx, http.MethodPost, "/auth/token",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	return resp.AccessToken, nil
}

// Me fetches the current authenticated user snapshot.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	raw, err := c.Call(ctx, http.MethodGet, "/users/me", nil, "")
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// UpdateSubscription switches the user's plan and returns the refreshed
// user snapshot.
func (c *Client) UpdateSubscription(ctx context.Context, plan domain.SubscriptionTier) (*domain.User, error) {
	raw, err := c.CallJSON(ctx, http.MethodPut, "/users/me/subscription", map[string]string{"plan": string(plan)})
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// Diagnose submits a crop image with coordinates and report language as a
// multipart payload and returns the full diagnosis report.
func (c *Client) Diagnose(ctx context.Context, req domain.DiagnosisRequest) (*domain.DiagnosisReport, error) {
	file, err := os.Open(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(req.ImagePath))
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	fields := map[string]string{
		"latitude":  strconv.FormatFloat(req.Latitude, 'f', -1, 64),
		"longitude": strconv.FormatFloat(req.Longitude, 'f', -1, 64),
		"language":  req.Language,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("build multipart body: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	raw, err := c.Call(ctx, http.MethodPost, "/diagnose", &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var report domain.DiagnosisReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode diagnosis report: %w", err)
	}
	return &report, nil
}

// DiagnosisHistory fetches the user's past diagnoses.
func (c *Client) DiagnosisHistory(ctx context.Context) ([]domain.DiagnosisHistoryItem, error) {
	raw, err := c.Call(ctx, http.MethodGet, "/diagnoses/me", nil, "")
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var history []domain.DiagnosisHistoryItem
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("decode diagnosis history: %w", err)
	}
	return history, nil
}

// Posts lists all community posts.
func (c *Client) Posts(ctx context.Context) ([]domain.Post, error) {
	raw, err := c.Call(ctx, http.MethodGet, "/posts/", nil, "")
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var posts []domain.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

// CreatePost publishes a new community post.
func (c *Client) CreatePost(ctx context.Context, content string) (*domain.Post, error) {
	raw, err := c.CallJSON(ctx, http.MethodPost, "/posts/", map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	var post domain.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	return &post, nil
}

// LikePost records a like on a post.
func (c *Client) LikePost(ctx context.Context, postID int64) error {
	_, err := c.Call(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), nil, "")
	return err
}

// CommentPost attaches a comment to a post.
func (c *Client) CommentPost(ctx context.Context, postID int64, content string) (*domain.Comment, error) {
	raw, err := c.CallJSON(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/comments", postID), map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	var comment domain.Comment
	if err := json.Unmarshal(raw, &comment); err != nil {
		return nil, fmt.Errorf("decode comment: %w", err)
	}
	return &comment, nil
}

// Products lists all marketplace products.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	return c.products(ctx, "/products/")
}

// MyProducts lists the products owned by the current business user.
func (c *Client) MyProducts(ctx context.Context) ([]domain.Product, error) {
	return c.products(ctx, "/products/me")
}

func (c *Client) products(ctx context.Context, path string) ([]domain.Product, error) {
	raw, err := c.Call(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// ProductCreate carries the add-product form fields.
type ProductCreate struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// CreateProduct lists a new product for sale.
func (c *Client) CreateProduct(ctx context.Context, req ProductCreate) (*domain.Product, error) {
	raw, err := c.CallJSON(ctx, http.MethodPost, "/products/", req)
	if err != nil {
		return nil, err
	}
	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &product, nil
}

// CreateOrder places an order for a product.
func (c *Client) CreateOrder(ctx context.Context, productID int64, quantity int) (*domain.Order, error) {
	payload := map[string]any{"product_id": productID, "quantity": quantity}
	raw, err := c.CallJSON(ctx, http.MethodPost, "/orders/", payload)
	if err != nil {
		return nil, err
	}
	var order domain.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

// MyOrders lists the current user's orders.
func (c *Client) MyOrders(ctx context.Context) ([]domain.Order, error) {
	raw, err := c.Call(ctx, http.MethodGet, "/orders/me", nil, "")
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var orders []domain.Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// ChatHistory fetches the message history with a conversation partner.
func (c *Client) ChatHistory(ctx context.Context, targetUserID int64) ([]domain.ChatMessage, error) {
	raw, err := c.Call(ctx, http.MethodGet, fmt.Sprintf("/chat/history/%d", targetUserID), nil, "")
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var history []domain.ChatMessage
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("decode chat history: %w", err)
	}
	return history, nil
}
