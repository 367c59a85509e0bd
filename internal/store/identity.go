package store

import (
	"github.com/example/asati/internal/datamodels/user"
)

// Page 当前页面
type Page string

const (
	PageLanding     Page = "landing"
	PageMarketplace Page = "marketplace"
	PageAdmin       Page = "admin"
)

// Valid 校验页面取值
func (p Page) Valid() bool {
	switch p {
	case PageLanding, PageMarketplace, PageAdmin:
		return true
	}
	return false
}

// Identity 会话身份：Anonymous | Customer | Administrator
type Identity interface {
	Kind() string
	isIdentity()
}

// Anonymous 未登录
type Anonymous struct{}

// Customer 普通用户，携带登录时的用户记录
type Customer struct {
	User user.User
}

// Administrator 内置管理员，不存在于用户集合中
type Administrator struct{}

func (Anonymous) Kind() string     { return "anonymous" }
func (Customer) Kind() string      { return string(user.RoleUser) }
func (Administrator) Kind() string { return string(user.RoleAdmin) }

func (Anonymous) isIdentity()     {}
func (Customer) isIdentity()      {}
func (Administrator) isIdentity() {}

const (
	adminID       = "admin"
	adminPassword = "admin"
)

// AdminProfile 管理员的展示信息（常量，不入库）
func AdminProfile() user.User {
	return user.User{
		ID:      adminID,
		Name:    "Admin",
		Email:   "admin@asati.com",
		Address: "Admin HQ",
		Role:    user.RoleAdmin,
	}
}

// homePage 登录结果决定落地页
func homePage(id Identity) Page {
	switch id.(type) {
	case Administrator:
		return PageAdmin
	case Customer:
		return PageMarketplace
	}
	return PageLanding
}

// IdentityView 身份的对外视图
type IdentityView struct {
	Kind    string `json:"kind"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func viewOf(id Identity) IdentityView {
	switch v := id.(type) {
	case Customer:
		return IdentityView{Kind: v.Kind(), ID: v.User.ID, Name: v.User.Name, Email: v.User.Email, Address: v.User.Address}
	case Administrator:
		a := AdminProfile()
		return IdentityView{Kind: v.Kind(), ID: a.ID, Name: a.Name, Email: a.Email, Address: a.Address}
	}
	return IdentityView{Kind: Anonymous{}.Kind()}
}

// owner 返回下单人 ID 与名称，匿名时 ok=false
func owner(id Identity) (userID, name string, ok bool) {
	switch v := id.(type) {
	case Customer:
		return v.User.ID, v.User.Name, true
	case Administrator:
		a := AdminProfile()
		return a.ID, a.Name, true
	}
	return "", "", false
}
