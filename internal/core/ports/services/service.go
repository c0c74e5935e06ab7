package services

// ServiceContainer holds all service facades the handlers depend on.
type ServiceContainer struct {
	User    UserSvcFacade
	Group   GroupSvcFacade
	Split   SplitSvcFacade
	Ledger  LedgerSvcFacade
	Expense ExpenseSvcFacade
}
