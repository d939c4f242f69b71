package services

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// payrollABI is the subset of the PayrollManagement contract interface used
// by the gateway.
const payrollABI = `[
  {"type":"function","name":"setEmployeeSalary","stateMutability":"nonpayable","inputs":[
    {"name":"employeeDid","type":"string"},{"name":"baseSalary","type":"uint256"},{"name":"kpiBonus","type":"uint256"},
    {"name":"allowance","type":"uint256"},{"name":"taxRate","type":"uint256"},
    {"name":"overtimeRate","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"updateEmployeeSalary","stateMutability":"nonpayable","inputs":[
    {"name":"employeeDid","type":"string"},{"name":"baseSalary","type":"uint256"},{"name":"kpiBonus","type":"uint256"},
    {"name":"allowance","type":"uint256"},{"name":"taxRate","type":"uint256"},
    {"name":"overtimeRate","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"createPayrollManual","stateMutability":"nonpayable","inputs":[
    {"name":"employeeDid","type":"string"},{"name":"period","type":"string"},
    {"name":"kpiScore","type":"uint256"},{"name":"workingDays","type":"uint256"},
    {"name":"overtimeHours","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"payEmployee","stateMutability":"nonpayable","inputs":[
    {"name":"payrollId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"calculateNetSalaryManual","stateMutability":"view","inputs":[
    {"name":"employeeDid","type":"string"},{"name":"kpiScore","type":"uint256"},
    {"name":"workingDays","type":"uint256"},{"name":"overtimeHours","type":"uint256"}],"outputs":[
    {"name":"baseSalaryActual","type":"uint256"},{"name":"kpiBonus","type":"uint256"},
    {"name":"allowance","type":"uint256"},{"name":"overtimeBonus","type":"uint256"},
    {"name":"taxAmount","type":"uint256"},{"name":"netSalary","type":"uint256"}]},
  {"type":"function","name":"getBalanceSummary","stateMutability":"view","inputs":[],"outputs":[
    {"name":"_totalDeposited","type":"uint256"},{"name":"_totalPaid","type":"uint256"},
    {"name":"_contractBalance","type":"uint256"},{"name":"isBalanced","type":"bool"}]},
  {"type":"function","name":"getContractBalance","stateMutability":"view","inputs":[],"outputs":[
    {"name":"","type":"uint256"}]},
  {"type":"function","name":"getEmployeeTransactions","stateMutability":"view","inputs":[
    {"name":"employeeDid","type":"string"}],"outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getTransaction","stateMutability":"view","inputs":[
    {"name":"transactionId","type":"uint256"}],"outputs":[
    {"name":"transactionId","type":"uint256"},{"name":"employeeDid","type":"string"},
    {"name":"amount","type":"uint256"},{"name":"transactionType","type":"string"},
    {"name":"description","type":"string"},{"name":"timestamp","type":"uint256"},
    {"name":"txHash","type":"bytes32"}]},
  {"type":"function","name":"depositFunds","stateMutability":"payable","inputs":[
    {"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"PayrollCreated","anonymous":false,"inputs":[
    {"name":"payrollId","type":"uint256","indexed":true},
    {"name":"employeeDid","type":"string","indexed":false},
    {"name":"period","type":"string","indexed":false},
    {"name":"netSalary","type":"uint256","indexed":false}]},
  {"type":"event","name":"PayrollPaid","anonymous":false,"inputs":[
    {"name":"payrollId","type":"uint256","indexed":true},
    {"name":"employeeDid","type":"string","indexed":false},
    {"name":"amount","type":"uint256","indexed":false}]}
]`

var payrollContractABI = mustParseABI(payrollABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("payroll ABI: " + err.Error())
	}
	return parsed
}
