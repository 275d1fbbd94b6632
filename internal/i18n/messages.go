package i18n

// messages 按语言组织的翻译表
var messages = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":                  "请求参数错误",
		"error.unauthorized":                 "未登录或登录已失效",
		"error.forbidden":                    "无权访问",
		"error.not_found":                    "资源不存在",
		"error.internal":                     "服务器内部错误",
		"error.rate_limited":                 "请求过于频繁，请在 %d 秒后重试",
		"error.rate_limit_unavailable":       "限流服务不可用",
		"error.queue_unavailable":            "任务队列不可用",
		"error.auth_header_missing":          "缺少认证信息",
		"error.auth_header_invalid":          "认证信息格式错误",
		"error.token_invalid":                "登录凭证无效",
		"error.token_revoked":                "登录凭证已失效，请重新登录",
		"error.jwt_secret_missing":           "JWT 密钥未配置",
		"error.admin_id_invalid":             "管理员ID无效",
		"error.admin_id_type_invalid":        "管理员ID类型错误",
		"error.admin_login_invalid":          "用户名或密码错误",
		"error.admin_username_invalid":       "用户名不合法",
		"error.admin_username_exists":        "用户名已存在",
		"error.admin_not_found":              "管理员不存在",
		"error.admin_fetch_failed":           "获取管理员失败",
		"error.admin_create_failed":          "创建管理员失败",
		"error.admin_update_failed":          "更新管理员失败",
		"error.admin_delete_failed":          "删除管理员失败",
		"error.admin_delete_self_forbidden":  "不能删除当前登录的管理员",
		"error.admin_delete_protected":       "超级管理员不可删除",
		"error.admin_delete_last_forbidden":  "至少保留一名管理员",
		"error.authz_role_immutable":         "预置角色不可修改",
		"error.login_too_many":               "登录尝试过多，请稍后再试",
		"error.user_id_invalid":              "用户ID无效",
		"error.user_id_type_invalid":         "用户ID类型错误",
		"error.login_invalid":                "邮箱或密码错误",
		"error.login_failed":                 "登录失败",
		"error.register_failed":              "注册失败",
		"error.user_disabled":                "账号已被禁用",
		"error.email_invalid":                "邮箱格式不正确",
		"error.email_exists":                 "邮箱已被注册",
		"error.password_weak":                "密码强度不足",
		"error.password_min_length":          "密码长度不能少于 %d 位",
		"error.password_require_upper":       "密码需包含大写字母",
		"error.password_require_lower":       "密码需包含小写字母",
		"error.password_require_number":      "密码需包含数字",
		"error.password_require_special":     "密码需包含特殊字符",
		"error.password_old_invalid":         "原密码错误",
		"error.user_fetch_failed":            "获取用户失败",
		"error.user_not_found":               "用户不存在",
		"error.user_update_failed":           "更新用户失败",
		"error.user_status_invalid":          "用户状态不合法",
		"error.role_invalid":                 "角色不存在",
		"error.role_change_forbidden":        "无权将用户变更为该角色",
		"error.tenant_mismatch":              "只能管理本机构的用户",
		"error.tenant_invalid":               "机构信息不合法",
		"error.tenant_not_found":             "机构不存在",
		"error.tenant_slug_exists":           "机构标识已存在",
		"error.tenant_suspended":             "机构已停用",
		"error.tenant_fetch_failed":          "获取机构失败",
		"error.tenant_save_failed":           "保存机构失败",
		"error.captcha_required":             "请完成验证码",
		"error.captcha_invalid":              "验证码错误",
		"error.captcha_config_invalid":       "验证码配置错误",
		"error.captcha_verify_failed":        "验证码校验失败",
		"error.captcha_generate_failed":      "验证码生成失败",
		"error.coupon_invalid":               "优惠券数据不合法",
		"error.coupon_not_found":             "优惠券不存在",
		"error.coupon_code_exists":           "优惠码已存在",
		"error.coupon_amount_invalid":        "金额不合法",
		"error.coupon_rejected":              "优惠券不可用",
		"error.coupon_fetch_failed":          "获取优惠券失败",
		"error.coupon_create_failed":         "创建优惠券失败",
		"error.coupon_update_failed":         "更新优惠券失败",
		"error.coupon_delete_failed":         "删除优惠券失败",
		"error.coupon_validate_failed":       "校验优惠券失败",
		"error.coupon_redeem_failed":         "核销优惠券失败",
		"error.coupon_generate_failed":       "生成优惠码失败",
		"error.coupon_code_options_invalid":  "优惠码生成参数不合法",
		"error.coupon_generate_exhausted":    "无法生成足够的唯一优惠码",
		"error.coupon_batch_too_large":       "单次生成数量超出上限",
		"error.coupon_usage_fetch_failed":    "获取核销记录失败",
		"error.subscription_invalid":         "订阅信息不合法",
		"error.subscription_not_found":       "订阅不存在",
		"error.subscription_token_invalid":   "退订链接无效",
		"error.subscription_fetch_failed":    "获取订阅失败",
		"error.subscription_save_failed":     "保存订阅失败",
		"error.subscription_export_failed":   "导出订阅失败",
		"error.email_service_disabled":       "邮件服务未启用",
		"error.email_service_not_configured": "邮件服务未配置",
		"error.email_recipient_rejected":     "收件人被拒收",
		"error.email_send_failed":            "邮件发送失败",
		"error.authz_role_invalid":           "权限角色不合法",
		"error.authz_policy_invalid":         "权限策略不合法",
		"error.authz_fetch_failed":           "获取权限数据失败",
		"error.authz_update_failed":          "更新权限失败",
		"error.audit_fetch_failed":           "获取审计日志失败",
		"error.route_path_required":          "路由路径不能为空",
		"success.subscribed":                 "订阅成功",
		"success.unsubscribed":               "已退订",
		"email.test_subject":                 "PrepWise 测试邮件",
	},
	LocaleTW: {
		"error.bad_request":                  "請求參數錯誤",
		"error.unauthorized":                 "未登入或登入已失效",
		"error.forbidden":                    "無權存取",
		"error.not_found":                    "資源不存在",
		"error.internal":                     "伺服器內部錯誤",
		"error.rate_limited":                 "請求過於頻繁，請在 %d 秒後重試",
		"error.rate_limit_unavailable":       "限流服務不可用",
		"error.queue_unavailable":            "任務佇列不可用",
		"error.auth_header_missing":          "缺少認證資訊",
		"error.auth_header_invalid":          "認證資訊格式錯誤",
		"error.token_invalid":                "登入憑證無效",
		"error.token_revoked":                "登入憑證已失效，請重新登入",
		"error.jwt_secret_missing":           "JWT 密鑰未設定",
		"error.admin_id_invalid":             "管理員ID無效",
		"error.admin_id_type_invalid":        "管理員ID類型錯誤",
		"error.admin_login_invalid":          "使用者名稱或密碼錯誤",
		"error.admin_username_invalid":       "使用者名稱不合法",
		"error.admin_username_exists":        "使用者名稱已存在",
		"error.admin_not_found":              "管理員不存在",
		"error.admin_fetch_failed":           "取得管理員失敗",
		"error.admin_create_failed":          "建立管理員失敗",
		"error.admin_update_failed":          "更新管理員失敗",
		"error.admin_delete_failed":          "刪除管理員失敗",
		"error.admin_delete_self_forbidden":  "不能刪除目前登入的管理員",
		"error.admin_delete_protected":       "超級管理員不可刪除",
		"error.admin_delete_last_forbidden":  "至少保留一名管理員",
		"error.authz_role_immutable":         "預置角色不可修改",
		"error.login_too_many":               "登入嘗試過多，請稍後再試",
		"error.user_id_invalid":              "使用者ID無效",
		"error.user_id_type_invalid":         "使用者ID類型錯誤",
		"error.login_invalid":                "信箱或密碼錯誤",
		"error.login_failed":                 "登入失敗",
		"error.register_failed":              "註冊失敗",
		"error.user_disabled":                "帳號已被停用",
		"error.email_invalid":                "信箱格式不正確",
		"error.email_exists":                 "信箱已被註冊",
		"error.password_weak":                "密碼強度不足",
		"error.password_min_length":          "密碼長度不能少於 %d 位",
		"error.password_require_upper":       "密碼需包含大寫字母",
		"error.password_require_lower":       "密碼需包含小寫字母",
		"error.password_require_number":      "密碼需包含數字",
		"error.password_require_special":     "密碼需包含特殊字元",
		"error.password_old_invalid":         "原密碼錯誤",
		"error.user_fetch_failed":            "取得使用者失敗",
		"error.user_not_found":               "使用者不存在",
		"error.user_update_failed":           "更新使用者失敗",
		"error.user_status_invalid":          "使用者狀態不合法",
		"error.role_invalid":                 "角色不存在",
		"error.role_change_forbidden":        "無權將使用者變更為該角色",
		"error.tenant_mismatch":              "只能管理本機構的使用者",
		"error.tenant_invalid":               "機構資訊不合法",
		"error.tenant_not_found":             "機構不存在",
		"error.tenant_slug_exists":           "機構標識已存在",
		"error.tenant_suspended":             "機構已停用",
		"error.tenant_fetch_failed":          "取得機構失敗",
		"error.tenant_save_failed":           "儲存機構失敗",
		"error.captcha_required":             "請完成驗證碼",
		"error.captcha_invalid":              "驗證碼錯誤",
		"error.captcha_config_invalid":       "驗證碼設定錯誤",
		"error.captcha_verify_failed":        "驗證碼校驗失敗",
		"error.captcha_generate_failed":      "驗證碼產生失敗",
		"error.coupon_invalid":               "優惠券資料不合法",
		"error.coupon_not_found":             "優惠券不存在",
		"error.coupon_code_exists":           "優惠碼已存在",
		"error.coupon_amount_invalid":        "金額不合法",
		"error.coupon_rejected":              "優惠券不可用",
		"error.coupon_fetch_failed":          "取得優惠券失敗",
		"error.coupon_create_failed":         "建立優惠券失敗",
		"error.coupon_update_failed":         "更新優惠券失敗",
		"error.coupon_delete_failed":         "刪除優惠券失敗",
		"error.coupon_validate_failed":       "校驗優惠券失敗",
		"error.coupon_redeem_failed":         "核銷優惠券失敗",
		"error.coupon_generate_failed":       "產生優惠碼失敗",
		"error.coupon_code_options_invalid":  "優惠碼產生參數不合法",
		"error.coupon_generate_exhausted":    "無法產生足夠的唯一優惠碼",
		"error.coupon_batch_too_large":       "單次產生數量超出上限",
		"error.coupon_usage_fetch_failed":    "取得核銷紀錄失敗",
		"error.subscription_invalid":         "訂閱資訊不合法",
		"error.subscription_not_found":       "訂閱不存在",
		"error.subscription_token_invalid":   "退訂連結無效",
		"error.subscription_fetch_failed":    "取得訂閱失敗",
		"error.subscription_save_failed":     "儲存訂閱失敗",
		"error.subscription_export_failed":   "匯出訂閱失敗",
		"error.email_service_disabled":       "郵件服務未啟用",
		"error.email_service_not_configured": "郵件服務未設定",
		"error.email_recipient_rejected":     "收件人被拒收",
		"error.email_send_failed":            "郵件寄送失敗",
		"error.authz_role_invalid":           "權限角色不合法",
		"error.authz_policy_invalid":         "權限策略不合法",
		"error.authz_fetch_failed":           "取得權限資料失敗",
		"error.authz_update_failed":          "更新權限失敗",
		"error.audit_fetch_failed":           "取得稽核日誌失敗",
		"error.route_path_required":          "路由路徑不能為空",
		"success.subscribed":                 "訂閱成功",
		"success.unsubscribed":               "已退訂",
		"email.test_subject":                 "PrepWise 測試郵件",
	},
	LocaleEN: {
		"error.bad_request":                  "Invalid request parameters",
		"error.unauthorized":                 "Unauthorized",
		"error.forbidden":                    "Forbidden",
		"error.not_found":                    "Resource not found",
		"error.internal":                     "Internal server error",
		"error.rate_limited":                 "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":       "Rate limiter unavailable",
		"error.queue_unavailable":            "Task queue unavailable",
		"error.auth_header_missing":          "Authorization header missing",
		"error.auth_header_invalid":          "Authorization header invalid",
		"error.token_invalid":                "Token invalid",
		"error.token_revoked":                "Token revoked, please sign in again",
		"error.jwt_secret_missing":           "JWT secret is not configured",
		"error.admin_id_invalid":             "Invalid admin id",
		"error.admin_id_type_invalid":        "Invalid admin id type",
		"error.admin_login_invalid":          "Invalid username or password",
		"error.admin_username_invalid":       "Invalid username",
		"error.admin_username_exists":        "Username already exists",
		"error.admin_not_found":              "Admin not found",
		"error.admin_fetch_failed":           "Failed to fetch admins",
		"error.admin_create_failed":          "Failed to create admin",
		"error.admin_update_failed":          "Failed to update admin",
		"error.admin_delete_failed":          "Failed to delete admin",
		"error.admin_delete_self_forbidden":  "You cannot delete the admin you are signed in as",
		"error.admin_delete_protected":       "Super admins cannot be deleted",
		"error.admin_delete_last_forbidden":  "At least one admin must remain",
		"error.authz_role_immutable":         "Built-in roles cannot be modified",
		"error.login_too_many":               "Too many login attempts, please try again later",
		"error.user_id_invalid":              "Invalid user id",
		"error.user_id_type_invalid":         "Invalid user id type",
		"error.login_invalid":                "Invalid email or password",
		"error.login_failed":                 "Sign in failed",
		"error.register_failed":              "Registration failed",
		"error.user_disabled":                "Account disabled",
		"error.email_invalid":                "Invalid email address",
		"error.email_exists":                 "Email already registered",
		"error.password_weak":                "Password is too weak",
		"error.password_min_length":          "Password must be at least %d characters",
		"error.password_require_upper":       "Password must contain an uppercase letter",
		"error.password_require_lower":       "Password must contain a lowercase letter",
		"error.password_require_number":      "Password must contain a number",
		"error.password_require_special":     "Password must contain a special character",
		"error.password_old_invalid":         "Current password is incorrect",
		"error.user_fetch_failed":            "Failed to fetch user",
		"error.user_not_found":               "User not found",
		"error.user_update_failed":           "Failed to update user",
		"error.user_status_invalid":          "Invalid user status",
		"error.role_invalid":                 "Unknown role",
		"error.role_change_forbidden":        "Not allowed to assign this role",
		"error.tenant_mismatch":              "Can only manage users of your own tenant",
		"error.tenant_invalid":               "Invalid tenant data",
		"error.tenant_not_found":             "Tenant not found",
		"error.tenant_slug_exists":           "Tenant slug already exists",
		"error.tenant_suspended":             "Tenant suspended",
		"error.tenant_fetch_failed":          "Failed to fetch tenants",
		"error.tenant_save_failed":           "Failed to save tenant",
		"error.captcha_required":             "Captcha required",
		"error.captcha_invalid":              "Captcha invalid",
		"error.captcha_config_invalid":       "Captcha configuration invalid",
		"error.captcha_verify_failed":        "Captcha verification failed",
		"error.captcha_generate_failed":      "Failed to generate captcha",
		"error.coupon_invalid":               "Invalid coupon data",
		"error.coupon_not_found":             "Coupon not found",
		"error.coupon_code_exists":           "Coupon code already exists",
		"error.coupon_amount_invalid":        "Invalid amount",
		"error.coupon_rejected":              "Coupon cannot be applied",
		"error.coupon_fetch_failed":          "Failed to fetch coupons",
		"error.coupon_create_failed":         "Failed to create coupon",
		"error.coupon_update_failed":         "Failed to update coupon",
		"error.coupon_delete_failed":         "Failed to delete coupon",
		"error.coupon_validate_failed":       "Failed to validate coupon",
		"error.coupon_redeem_failed":         "Failed to redeem coupon",
		"error.coupon_generate_failed":       "Failed to generate coupon codes",
		"error.coupon_code_options_invalid":  "Invalid coupon code options",
		"error.coupon_generate_exhausted":    "Could not generate enough unique codes",
		"error.coupon_batch_too_large":       "Batch size exceeds the limit",
		"error.coupon_usage_fetch_failed":    "Failed to fetch coupon usages",
		"error.subscription_invalid":         "Invalid subscription",
		"error.subscription_not_found":       "Subscription not found",
		"error.subscription_token_invalid":   "Unsubscribe link invalid",
		"error.subscription_fetch_failed":    "Failed to fetch subscriptions",
		"error.subscription_save_failed":     "Failed to save subscription",
		"error.subscription_export_failed":   "Failed to export subscriptions",
		"error.email_service_disabled":       "Email service disabled",
		"error.email_service_not_configured": "Email service not configured",
		"error.email_recipient_rejected":     "Recipient rejected",
		"error.email_send_failed":            "Failed to send email",
		"error.authz_role_invalid":           "Invalid authorization role",
		"error.authz_policy_invalid":         "Invalid authorization policy",
		"error.authz_fetch_failed":           "Failed to fetch authorization data",
		"error.authz_update_failed":          "Failed to update authorization",
		"error.audit_fetch_failed":           "Failed to fetch audit logs",
		"error.route_path_required":          "Route path is required",
		"success.subscribed":                 "Subscribed",
		"success.unsubscribed":               "Unsubscribed",
		"email.test_subject":                 "PrepWise test email",
	},
}
