package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/roadsphere/roadsphere/internal/apperr"
)

var errBadBody = apperr.New(apperr.KindValidation, "invalid_body", "Invalid request body")

// Handler exposes the account lifecycle endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// Register creates an account and sends the verification code.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	profile, err := h.svc.Register(c.UserContext(), RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Your account has been created. Please check your email to verify OTP",
		"user":    profile,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message   string        `json:"message"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      SessionClaims `json:"user"`
}

// Login validates credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	res, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		Message:   "Login successful",
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
	})
}

type otpRequest struct {
	Email       string `json:"email"`
	OTPCode     string `json:"otp_code"`
	AssignedFor string `json:"assigned_for"`
}

// VerifyEmailOtp marks the account verified.
func (h *Handler) VerifyEmailOtp(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	if err := h.svc.VerifyEmailOtp(c.UserContext(), req.Email, req.OTPCode); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Email has been successfully verified"})
}

// SendOtp issues a new code for the requested purpose.
func (h *Handler) SendOtp(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	if err := h.svc.SendOtp(c.UserContext(), req.Email, req.AssignedFor); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Please check your email inbox or spam to verify the OTP sent to your email",
	})
}

// VerifyResetOtp exchanges a reset code for a reset token.
func (h *Handler) VerifyResetOtp(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	token, err := h.svc.VerifyResetOtp(c.UserContext(), req.Email, req.OTPCode)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":   "Otp Successfully Verified.",
		"otp_token": token,
	})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
	OTPToken string `json:"otp_token"`
}

// ResetPassword sets a new password using a reset token.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	if err := h.svc.ResetPassword(c.UserContext(), req.Password, req.OTPToken); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Your password has been successfully changed"})
}
