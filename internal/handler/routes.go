package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. sessionMiddleware resolves the
// caller's session; writeLimit throttles writes per session and must run
// after it.
func RegisterRoutes(
	e *echo.Echo,
	sessionMiddleware echo.MiddlewareFunc,
	writeLimit echo.MiddlewareFunc,
	accountHandler *AccountHandler,
	expenseHandler *ExpenseHandler,
	ownerHandler *OwnerHandler,
	sessionHandler *SessionHandler,
	wsHandler *WebSocketHandler,
) {
	// WebSocket change feed, keyed by an existing session
	e.GET("/ws", wsHandler.HandleWS)

	// API version 1
	api := e.Group("/api/v1", sessionMiddleware, writeLimit)

	// Expense account routes
	accounts := api.Group("/expense-accounts")
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/session", accountHandler.GetSessionAccounts)
	accounts.GET("/categories", accountHandler.GetCategories)
	accounts.POST("", accountHandler.CreateAccount)
	accounts.PATCH("/:id", accountHandler.UpdateAccount)
	accounts.PUT("/:id/active", accountHandler.SetActive)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Expense routes
	expenses := api.Group("/expenses")
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/selection", expenseHandler.GetSelection)
	expenses.PUT("/selection", expenseHandler.SelectAccount)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)

	// Salesmen and expense owner routes
	people := api.Group("/people")
	people.GET("/salesmen", ownerHandler.GetSalesmen)
	people.GET("/owners", ownerHandler.GetOwners)
	people.GET("/picker", ownerHandler.GetPicker)
	people.POST("/owners", ownerHandler.CreateOwner)

	// Session routes
	api.GET("/session/status", sessionHandler.GetStatus)
}
