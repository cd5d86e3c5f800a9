package configs

import "gopkg.in/yaml.v3"

// DecorateConfigNode 将硬编码的中文注释注入到配置节点树中。
func DecorateConfigNode(node *yaml.Node) {
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return
	}
	root := node.Content[0]
	if root.Kind != yaml.MappingNode {
		return
	}

	root.HeadComment = `# 这个配置文件内的注释是自动生成的，请不要手动修改。
# 需要修改注释时，请在 src/configs/config_comments.go 文件内修改。`

	setFieldComment(root, "pref_dir", "# 配置目录，为空时使用系统默认位置（可用环境变量 PIGEONPLANNER_PREFDIR 覆盖）", "")
	setFieldLineComment(root, "database", "# 相对路径基于 pref_dir")

	logNode := findNode(root, "log")
	if logNode != nil {
		setFieldComment(logNode, "file", "# 日志文件，为空时写入 pref_dir/pigeonplanner.log", "")
		setFieldComment(logNode, "keep_old", "# 启动时把上一次的日志保留为 pigeonplanner.log.old", "")
	}

	// Sentry 配置注释
	setFieldHeadComment(root, "sentry", "# Sentry 错误监控配置（用于收集崩溃日志）")
	sentryNode := findNode(root, "sentry")
	if sentryNode != nil {
		setFieldComment(sentryNode, "enable", "# 是否启用 Sentry 错误监控", "")
		setFieldComment(sentryNode, "dsn", "# Sentry DSN，留空则禁用（可用环境变量 SENTRY_DSN 覆盖）", "")
		setFieldComment(sentryNode, "environment", "# 环境标识：production 或 development", "")
	}

	setFieldHeadComment(root, "mail", "# 发送诊断报告用的邮件配置")
	mailNode := findNode(root, "mail")
	if mailNode != nil {
		setFieldComment(mailNode, "smtpHost", "# SMTP服务器地址 (例如: smtp.gmail.com)", "")
		setFieldComment(mailNode, "smtpPort", "# SMTP服务器端口 (常用端口: 25, 465, 587)", "")
		setFieldComment(mailNode, "senderEmail", "# 发送者邮箱地址", "")
		setFieldComment(mailNode, "senderPassword", "# 发送者邮箱授权码或应用专用密码", "")
		setFieldComment(mailNode, "recipientEmail", "# 接收者邮箱地址", "")
	}

	backupNode := findNode(root, "backup")
	if backupNode != nil {
		setFieldComment(backupNode, "folder", "# 备份 zip 的存放目录，为空时使用用户主目录", "")
	}
}

func findNode(mapNode *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value == key {
			return mapNode.Content[i+1]
		}
	}
	return nil
}

func setFieldComment(mapNode *yaml.Node, key, headComment, lineComment string) {
	for i := 0; i < len(mapNode.Content); i += 2 {
		k := mapNode.Content[i]
		if k.Value == key {
			if headComment != "" {
				k.HeadComment = headComment
			}
			if lineComment != "" {
				k.LineComment = lineComment
			}
			return
		}
	}
}

func setFieldLineComment(mapNode *yaml.Node, key, lineComment string) {
	for i := 0; i < len(mapNode.Content); i += 2 {
		k := mapNode.Content[i]
		if k.Value == key {
			k.LineComment = lineComment
			return
		}
	}
}

func setFieldHeadComment(mapNode *yaml.Node, key, headComment string) {
	for i := 0; i < len(mapNode.Content); i += 2 {
		k := mapNode.Content[i]
		if k.Value == key {
			k.HeadComment = headComment
			return
		}
	}
}
