package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

type menuRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	PrepMinutes int     `json:"prep_minutes"`
	Active      *bool   `json:"active"`
}

func validCategory(c string) bool {
	switch models.MenuCategory(c) {
	case models.CategoryFood, models.CategoryDrink, models.CategoryDessert:
		return true
	}
	return false
}

// CreateMenu -> staff adds a dish or drink
func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !validCategory(req.Category) {
		utils.RespondError(c, http.StatusBadRequest, &CustomError{"category must be food, drink or dessert"})
		return
	}
	if req.Price <= 0 {
		utils.RespondError(c, http.StatusBadRequest, &CustomError{"price must be positive"})
		return
	}

	menu := models.Menu{
		Name:        req.Name,
		Description: req.Description,
		Category:    models.MenuCategory(req.Category),
		Price:       req.Price,
		PrepMinutes: req.PrepMinutes,
		Active:      true,
	}
	if req.Active != nil {
		menu.Active = *req.Active
	}
	if err := mc.DB.Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.InfoLogger.Printf("Menu %q created (%s)", menu.Name, menu.Category)
	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

// GetAllMenus -> active menu, optionally filtered by ?category=
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	q := mc.DB.Where("active = ?", true).Order("category asc, name asc")
	if cat := c.Query("category"); cat != "" {
		if !validCategory(cat) {
			utils.RespondError(c, http.StatusBadRequest, &CustomError{"unknown category"})
			return
		}
		q = q.Where("category = ?", cat)
	}

	var menus []models.Menu
	if err := q.Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// GetMenuByID -> one menu item, inactive ones included (staff detail view)
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("menu_id"))
	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

// UpdateMenu -> staff edits name, price, category or availability
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("menu_id"))
	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !validCategory(req.Category) {
		utils.RespondError(c, http.StatusBadRequest, &CustomError{"category must be food, drink or dessert"})
		return
	}
	if req.Price <= 0 {
		utils.RespondError(c, http.StatusBadRequest, &CustomError{"price must be positive"})
		return
	}

	menu.Name = req.Name
	menu.Description = req.Description
	menu.Category = models.MenuCategory(req.Category)
	menu.Price = req.Price
	menu.PrepMinutes = req.PrepMinutes
	if req.Active != nil {
		menu.Active = *req.Active
	}
	if err := mc.DB.Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", menu)
}

// DeleteMenu -> retire a menu item. Past order lines keep their copied
// name and price, so a hard delete is safe.
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("menu_id"))
	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if err := mc.DB.Delete(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"id": menu.ID})
}
