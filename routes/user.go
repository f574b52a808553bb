package routes

import (
	"errors"

	"pasr-server/models"
	"pasr-server/storage"
	"pasr-server/utils"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
)

type SignupInput struct {
	Name         string `json:"name" form:"name" validate:"required,max=100"`
	Username     string `json:"username" form:"username" validate:"required,handle"`
	EmailAddress string `json:"emailAddress" form:"emailAddress" validate:"omitempty,email,max=255"`
	Password     string `json:"password" form:"password" validate:"required,min=6,max=256"`
	Address      string `json:"address" form:"address" validate:"required,max=300"`
}

type LoginInput struct {
	Username string `json:"username" form:"username" validate:"required,handle"`
	Password string `json:"password" form:"password" validate:"required"`
}

type UpdateCustomerInput struct {
	Address string `json:"address" form:"address" validate:"required,max=300"`
	Pincode string `json:"pincode" form:"pincode" validate:"omitempty,numeric,max=12"`
}

type DeleteAccountInput struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (in *SignupInput) Normalize() { in.Username = utils.NormalizeHandle(in.Username) }
func (in *LoginInput) Normalize()  { in.Username = utils.NormalizeHandle(in.Username) }

func (h *Handlers) Signup(ctx iris.Context) {
	var input SignupInput
	if !utils.ReadValid(ctx, &input) {
		return
	}

	geo, ok := h.geocode(ctx, input.Address, "/customer/signup")
	if !ok {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalError(ctx, err, "hash password")
		return
	}

	customer := models.Customer{
		Name:         input.Name,
		Username:     input.Username,
		EmailAddress: input.EmailAddress,
		PasswordHash: string(hash),
		Address:      input.Address,
		Pincode:      geo.Postcode,
	}
	customer.SetProfilePoint(geo.Point)

	err = h.Store.CreateCustomer(ctx.Request().Context(), &customer)
	if errors.Is(err, storage.ErrDuplicate) {
		utils.Fail(ctx, "/customer/signup", "Username already registered")
		return
	}
	if err != nil {
		utils.InternalError(ctx, err, "create customer")
		return
	}

	utils.Login(ctx, &customer)
	utils.Succeed(ctx, "/home", "Welcome to PaSr. Thank you for signup "+customer.Name)
}

func (h *Handlers) Login(ctx iris.Context) {
	var input LoginInput
	if !utils.ReadBody(ctx, &input) {
		return
	}
	if err := utils.Validate(&input); err != nil {
		utils.Fail(ctx, "/login", "MobileNO or password is not correct")
		return
	}

	customer, err := h.Store.FindCustomerByUsername(ctx.Request().Context(), input.Username)
	if errors.Is(err, storage.ErrNotFound) {
		utils.Fail(ctx, "/login", "MobileNO or password is not correct")
		return
	}
	if err != nil {
		utils.InternalError(ctx, err, "load customer")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(input.Password)) != nil {
		utils.Fail(ctx, "/login", "MobileNO or password is not correct")
		return
	}

	utils.Login(ctx, customer)
	utils.Succeed(ctx, "/home", "Welcome back to PaSr. Your login is successfull")
}

func (h *Handlers) Logout(ctx iris.Context) {
	h.forgetLocation(ctx)
	utils.Logout(ctx)
	utils.Flash(ctx, "danger", "You are logged out!")
	ctx.Redirect("/home", iris.StatusSeeOther)
}

// CurrentUserListings returns everything the signed-in customer has listed.
func (h *Handlers) CurrentUserListings(ctx iris.Context) {
	c := utils.CurrentCustomer(ctx)
	reqCtx := ctx.Request().Context()

	providers, err := h.Store.ProvidersByOwner(reqCtx, c.ID)
	if err != nil {
		utils.InternalError(ctx, err, "load providers")
		return
	}
	shops, err := h.Store.ShopsByOwner(reqCtx, c.ID)
	if err != nil {
		utils.InternalError(ctx, err, "load shops")
		return
	}
	products, err := h.Store.ProductsByOwner(reqCtx, c.ID)
	if err != nil {
		utils.InternalError(ctx, err, "load products")
		return
	}

	ctx.JSON(iris.Map{
		"customer": c,
		"listings": providers,
		"shops":    shops,
		"products": products,
	})
}

func (h *Handlers) UpdateCustomer(ctx iris.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	c := utils.CurrentCustomer(ctx)
	if c.ID != id {
		utils.Fail(ctx, "/user", "You can only update your own profile.")
		return
	}

	var input UpdateCustomerInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	geo, ok := h.geocode(ctx, input.Address, "/user")
	if !ok {
		return
	}
	pincode := input.Pincode
	if pincode == "" {
		pincode = geo.Postcode
	}
	if err := h.Store.UpdateProfileLocation(ctx.Request().Context(), c.ID, input.Address, pincode, geo.Point); err != nil {
		utils.InternalError(ctx, err, "update customer")
		return
	}
	utils.Succeed(ctx, "/user", "Profile location updated successfully")
}

// DeleteAccount removes the signed-in customer after re-checking their
// handle and password.
func (h *Handlers) DeleteAccount(ctx iris.Context) {
	c := utils.CurrentCustomer(ctx)

	var input DeleteAccountInput
	if !utils.ReadValid(ctx, &input) {
		return
	}
	if utils.NormalizeHandle(input.Username) != c.Username {
		utils.Fail(ctx, "/customer/delete-account", "Phone number does not match your account.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(input.Password)) != nil {
		utils.Fail(ctx, "/customer/delete-account", "Incorrect password.")
		return
	}

	golog.Warnf("account deletion requested by %s (%s)", c.ID, c.Username)
	if err := h.Cascade.DeleteAccount(ctx.Request().Context(), c.ID); err != nil {
		utils.InternalError(ctx, err, "delete account")
		return
	}
	h.forgetLocation(ctx)
	utils.Logout(ctx)
	utils.Succeed(ctx, "/home", "Your account has been deleted.")
}

// forgetLocation drops the point shared on this session so the next
// customer on the same browser does not inherit it.
func (h *Handlers) forgetLocation(ctx iris.Context) {
	sid := utils.SessionID(ctx)
	if sid == "" || h.Locations == nil {
		return
	}
	if err := h.Locations.Delete(ctx.Request().Context(), sid); err != nil {
		golog.Warnf("clear session location: %v", err)
	}
}
