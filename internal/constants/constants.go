package constants

// 订单状态常量
const (
	OrderStatusNew       = "new"
	OrderStatusShipping  = "shipping"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// 付款状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusVerifying = "verifying"
	PaymentStatusPaid      = "paid"
	PaymentStatusCancelled = "cancelled"
)

// 折扣方式常量
const (
	DiscountModePercent = "percent"
	DiscountModeAmount  = "amount"
)

// 计税方式常量
const (
	VATModeExclusive = "exclusive"
	VATModeInclusive = "inclusive"
)

// 生产批次状态常量
const (
	BatchStatusPlanned    = "planned"
	BatchStatusInProgress = "in_progress"
	BatchStatusCompleted  = "completed"
	BatchStatusCancelled  = "cancelled"
)

// 配送状态常量
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusShipped   = "shipped"
	DeliveryStatusDelivered = "delivered"
)

// 库存流水类型常量
const (
	StockTxnTypeIn     = "in"
	StockTxnTypeOut    = "out"
	StockTxnTypeAdjust = "adjust"
)

// 客户跟进等级常量
const (
	FollowUpLevelSevere     = "severe"
	FollowUpLevelElevated   = "elevated"
	FollowUpLevelMild       = "mild"
	FollowUpLevelOnSchedule = "on_schedule"
)

// 客户跟进分布区间常量
const (
	FollowUpBucket0To7   = "0-7"
	FollowUpBucket8To14  = "8-14"
	FollowUpBucket15To30 = "15-30"
	FollowUpBucket31To60 = "31-60"
	FollowUpBucketOver60 = "60+"
	FollowUpBucketNever  = "never"
)

// 应收账龄区间常量
const (
	AgingBucketOnTime   = "on_time"
	AgingBucketDue      = "due"
	AgingBucketLate     = "late"
	AgingBucketVeryLate = "very_late"
	AgingBucketCritical = "critical"
)

// 队列与任务常量
const (
	QueueDefault     = "default"
	TaskStockLowScan = "stock:low_scan"
)
