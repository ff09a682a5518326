package handler

import (
	"github.com/gin-gonic/gin"

	appreport "github.com/xiebiao/medsupply/internal/application/report"
	"github.com/xiebiao/medsupply/internal/interface/http/middleware"
	"github.com/xiebiao/medsupply/pkg/response"
)

// ReportHandler 报表HTTP处理器
type ReportHandler struct {
	dashboardUseCase *appreport.DashboardUseCase
}

// NewReportHandler 创建报表处理器
func NewReportHandler(dashboardUseCase *appreport.DashboardUseCase) *ReportHandler {
	return &ReportHandler{dashboardUseCase: dashboardUseCase}
}

// Dashboard 仪表盘汇总
// @Summary      仪表盘汇总
// @Description  申领单状态统计、在途发运数、低库存行数；机构角色限本机构
// @Tags         报表模块
// @Security     BearerAuth
// @Success      200 {object} response.Response "汇总数据"
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboardUseCase.Execute(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summary)
}
