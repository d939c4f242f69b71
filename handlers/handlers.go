package handlers

import (
	"dapp_payroll/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	DB       *gorm.DB
	Payroll  *services.PayrollSynchronizer
	Balances *services.BalanceReconciler
)

func InitHandlers(db *gorm.DB, payroll *services.PayrollSynchronizer, balances *services.BalanceReconciler) {
	DB = db
	Payroll = payroll
	Balances = balances
}

// Health reports whether the local ledger database answers.
func Health(c *fiber.Ctx) error {
	sqlDB, err := DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": "unreachable"})
	}
	return c.JSON(fiber.Map{"status": "ok", "database": "ok"})
}
