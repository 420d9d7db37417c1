package entity

import "time"

// Tipos de entidad auditada.
const (
	EntityTypeLot         = "Lot"
	EntityTypeTransaction = "Transaction"
	EntityTypeProduct     = "Product"
)

// Acciones registradas en la bitácora.
const (
	ActionLotCreated               = "Lot Created"
	ActionLotCreateInvalidInput    = "Lot Creation Failed - Invalid Input"
	ActionLotCreateProductNotFound = "Lot Creation Failed - Product Not Found"
	ActionLotCreateDuplicate       = "Lot Creation Failed - Duplicate Entry"
	ActionLotCreateError           = "Lot Creation Failed - Internal Error"
	ActionLotUpdated               = "Lot Updated"
	ActionLotUpdateInvalidInput    = "Lot Update Failed - Invalid Input"
	ActionLotUpdateNotFound        = "Lot Update Failed - Not Found"
	ActionLotUpdateDeleted         = "Lot Update Failed - Lot Deleted"
	ActionLotUpdateError           = "Lot Update Failed - Internal Error"
	ActionLotDeleted               = "Lot Soft Deleted"
	ActionLotDeleteBlocked         = "Lot Delete Blocked - Quantity Remaining"
	ActionLotDeleteNotFound        = "Lot Delete Failed - Not Found"
	ActionLotDeleteAlreadyDeleted  = "Lot Delete Failed - Already Deleted"
	ActionLotDeleteIntegrity       = "Lot Delete Failed - Data Integrity"
	ActionLotDeleteError           = "Lot Delete Failed - Internal Error"
	ActionTransactionIN            = "Transaction IN"
	ActionTransactionOUT           = "Transaction OUT"
	ActionTxnLotNotFound           = "Transaction Failed - Lot Not Found"
	ActionTxnInvalidType           = "Transaction Failed - Invalid Type"
	ActionTxnInvalidQuantity       = "Transaction Failed - Invalid Quantity"
	ActionTxnInsufficientStock     = "Transaction Failed - Insufficient Stock"
	ActionTxnLotDeleted            = "Transaction Failed - Lot Deleted"
	ActionTxnIntegrity             = "Transaction Failed - Data Integrity"
	ActionTxnError                 = "Transaction Failed - Internal Error"
	ActionProductCreated           = "Product Created"
	ActionProductCreateInvalid     = "Product Creation Failed - Invalid Input"
	ActionProductCreateDuplicate   = "Product Creation Failed - Duplicate Entry"
	ActionProductUpdated           = "Product Updated"
	ActionProductUpdateInvalid     = "Product Update Failed - Invalid Input"
	ActionProductUpdateNotFound    = "Product Update Failed - Not Found"
	ActionProductUpdateDuplicate   = "Product Update Failed - Duplicate Entry"
	ActionProductDeleted           = "Product Deleted"
	ActionProductDeleteBlocked     = "Product Deletion Blocked - Inventory Exists"
	ActionProductDeleteNotFound    = "Product Deletion Failed - Not Found"
)

// AuditEvent registro de la bitácora de actividad. Details es un objeto JSON libre.
type AuditEvent struct {
	ID            string
	UserID        string
	UserEmail     string
	Action        string
	EntityType    string
	EntityID      string
	Details       map[string]any
	SourceAddress string
	CreatedAt     time.Time
}
