package model

import "github.com/google/uuid"

// AccountKind classifies accounts by what they book.
type AccountKind string

const (
	AccountKindMeans      AccountKind = "means"      // fixed means of production ("p")
	AccountKindResources  AccountKind = "resources"  // liquid means of production ("r")
	AccountKindLabour     AccountKind = "labour"     // work certificates ("a")
	AccountKindProduct    AccountKind = "product"    // product account ("prd")
	AccountKindMember     AccountKind = "member"     // a member's personal account
	AccountKindAccounting AccountKind = "accounting" // the social accounting
)

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountKindMeans, AccountKindResources, AccountKindLabour,
		AccountKindProduct, AccountKindMember, AccountKindAccounting:
		return true
	}
	return false
}

// OwnerKind tags who holds an account.
type OwnerKind string

const (
	OwnerMember           OwnerKind = "member"
	OwnerCompany          OwnerKind = "company"
	OwnerSocialAccounting OwnerKind = "social_accounting"
)

// Owner identifies the holder of an account.
type Owner struct {
	Kind OwnerKind
	ID   uuid.UUID
}

// Account is a labour-hour account. Its balance is derived from transactions.
type Account struct {
	ID    uuid.UUID
	Kind  AccountKind
	Owner Owner
}

// Company is a producing unit with four accounts.
type Company struct {
	ID               uuid.UUID
	Name             string
	Email            string
	MeansAccount     uuid.UUID
	ResourcesAccount uuid.UUID
	LabourAccount    uuid.UUID
	ProductAccount   uuid.UUID
}

// Accounts returns the company's account ids in means, resources, labour, product order.
func (c Company) Accounts() []uuid.UUID {
	return []uuid.UUID{c.MeansAccount, c.ResourcesAccount, c.LabourAccount, c.ProductAccount}
}

// Member is a worker or consumer with a single personal account.
type Member struct {
	ID      uuid.UUID
	Name    string
	Email   string
	Account uuid.UUID
}

// SocialAccounting is the system-wide issuer of credit and wages.
type SocialAccounting struct {
	ID      uuid.UUID
	Account uuid.UUID
}
