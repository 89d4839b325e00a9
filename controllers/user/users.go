package userControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gunalchandran/grocery-backend/controllers/respond"
	"github.com/gunalchandran/grocery-backend/middleware"
	"github.com/gunalchandran/grocery-backend/services"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /register
func Register(accounts *services.Accounts) gin.HandlerFunc {
	return register(accounts, false)
}

// POST /admin/register, behind the API key. An omitted role creates an
// admin.
func RegisterAdmin(accounts *services.Accounts) gin.HandlerFunc {
	return register(accounts, true)
}

func register(accounts *services.Accounts, allowAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := accounts.Register(c.Request.Context(), input, allowAdmin); err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
	}
}

// POST /login
func Login(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		result, err := accounts.Login(c.Request.Context(), input.Email, input.Password)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Login successful",
			"token":   result.Token,
			"role":    result.Role,
			"name":    result.Name,
			"phone":   result.Phone,
		})
	}
}

// GET /protected
func Protected(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Access granted", "user": middleware.CurrentEmail(c)})
}

// POST /update-profile takes a multipart "phone" field and an optional
// "profile" picture.
func UpdateProfile(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		pic, err := c.FormFile("profile")
		if err != nil {
			if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
				return
			}
			pic = nil
		}

		url, err := accounts.UpdateProfile(c.Request.Context(), middleware.CurrentEmail(c), c.PostForm("phone"), pic)
		if err != nil {
			respond.Error(c, err)
			return
		}
		if url == nil {
			c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully!"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully!", "profile_url": *url})
	}
}

// GET /get-profile
func GetProfile(accounts *services.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := accounts.GetProfile(c.Request.Context(), middleware.CurrentEmail(c))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}
