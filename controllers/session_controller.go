package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SignupInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !sessionSvc.Signup(input.Name, input.Email, input.Password) {
		c.JSON(http.StatusConflict, gin.H{"error": "signup failed"})
		return
	}

	resp := gin.H{"user": sessionSvc.Current()}
	if tokens != nil {
		if t, ok := tokens.Token(); ok {
			resp["token"] = t
		}
	}
	c.JSON(http.StatusCreated, resp)
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !sessionSvc.Login(input.Email, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	resp := gin.H{"user": sessionSvc.Current()}
	if tokens != nil {
		if t, ok := tokens.Token(); ok {
			resp["token"] = t
		}
	}
	c.JSON(http.StatusOK, resp)
}

func Logout(c *gin.Context) {
	sessionSvc.Logout()
	c.Status(http.StatusNoContent)
}

// GetSession reports the active identity; user is null when signed out.
func GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": sessionSvc.Current()})
}
