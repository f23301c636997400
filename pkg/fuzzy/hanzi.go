package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// t2sPairs lists traditional/simplified character pairs. No simplified form appears
// as a traditional key, so the mapping is idempotent.
const t2sPairs = `
	愛爱 價价 們们 來来 個个 為为 這这 國国 說说 説说 時时 會会 過过 後后 對对 學学 還还 發发 髮发 現现
	開开 問问 當当 噹当 經经 長长 樣样 點点 從从 動动 進进 電电 體体 實实 種种 話话 義义 應应 頭头 聽听
	見见 無无 氣气 關关 與与 東东 車车 萬万 歲岁 歡欢 樂乐 夢梦 淚泪 憶忆 戀恋 聲声 紅红 綠绿 藍蓝 黃黄
	雙双 風风 雲云 飛飞 鳥鸟 燈灯 葉叶 陽阳 顏颜 邊边 遠远 離离 別别 歸归 憂忧 傷伤 難难 夠够 願愿 戰战
	寶宝 貝贝 親亲 瀟潇 灑洒 滿满 漢汉 劍剑 俠侠 傳传 憐怜 歎叹 嘆叹 聞闻 門门 鐘钟 鍾钟 錢钱 鐵铁 銀银
	鏡镜 隻只 華华 麗丽 間间 興兴 亂乱 戲戏 劇剧 曉晓 燒烧 熱热 煙烟 溫温 涼凉 蘭兰 讓让 認认 識识 記记
	許许 誰谁 讀读 謝谢 請请 談谈 謊谎 語语 詩诗 詞词 調调 諾诺 變变 響响 頁页 順顺 領领 顧顾 類类 驚惊
	馬马 騎骑 鬥斗 魚鱼 鳳凤 鶴鹤 龍龙 龜龟 塵尘 殺杀 軍军 輕轻 載载 輪轮 轉转 農农 運运 達达 選选 遺遗
	鄉乡 醫医 釋释 裡里 裏里 麼么 麽么 於于 嗎吗 嗚呜 囉啰 啞哑 團团 糰团 園园 圓圆 圖图 場场 塊块 壞坏
	壓压 聖圣 奪夺 獎奖 孫孙 寧宁 專专 尋寻 將将 屆届 層层 島岛 嶺岭 帶带 師师 幫帮 廣广 廳厅 張张 彈弹
	彎弯 復复 複复 徹彻 懷怀 懶懒 戶户 掃扫 掛挂 採采 換换 揚扬 擁拥 擇择 擊击 擔担 據据 擺摆 擾扰 攜携
	敗败 敵敌 數数 斷断 曆历 歷历 書书 條条 極极 構构 標标 樹树 橋桥 機机 權权 檔档 殘残 決决 沒没 淺浅
	測测 湯汤 滅灭 漁渔 潔洁 濃浓 濕湿 煩烦 燦灿 爺爷 牆墙 狀状 獨独 獅狮 獻献 環环 瑪玛 畫画 療疗 盡尽
	儘尽 監监 睜睁 礙碍 祕秘 禮礼 禍祸 稱称 穩稳 窮穷 競竞 筆笔 節节 範范 簡简 籃篮 糧粮 紀纪 約约 純纯
	紙纸 級级 紛纷 細细 終终 組组 結结 絕绝 絲丝 給给 統统 綁绑 維维 網网 緊紧 線线 綫线 緣缘 編编 練练
	縱纵 總总 織织 繞绕 繩绳 續续 罷罢 羅罗 習习 聯联 聰聪 職职 膽胆 臉脸 舊旧 艱艰 藝艺 蘋苹 號号 蟲虫
	術术 衛卫 衝冲 補补 裝装 襯衬 規规 視视 覺觉 觀观 計计 訊讯 設设 訪访 證证 評评 試试 該该 誠诚 誤误
	課课 論论 諒谅 講讲 謎谜 護护 讚赞 貓猫 負负 貨货 費费 貼贴 賣卖 買买 賞赏 賴赖 贏赢 趕赶 趙赵 跡迹
	蹟迹 蹤踪 躍跃 軟软 輝辉 輩辈 辦办 辭辞 連连 週周 遊游 遲迟 適适 鄰邻 鎖锁 鋼钢 錄录 錯错 鍵键 閃闪
	閉闭 閒闲 闊阔 陣阵 陰阴 陳陈 陸陆 隊队 際际 隨随 險险 雖虽 雜杂 雞鸡 靈灵 靜静 韓韩 頂顶 項项 須须
	鬚须 預预 頓顿 頻频 題题 額额 顯显 飄飘 飯饭 飲饮 餓饿 館馆 騙骗 驗验 鬧闹 鮮鲜 鳴鸣 麥麦 黨党 齊齐
	齒齿 壯壮 賓宾 賀贺 傘伞 備备 傾倾 僅仅 優优 儲储 兒儿 內内 兩两 冊册 凍冻 剛刚 創创 劃划 勁劲 勞劳
	勢势 勝胜 區区 協协 卻却 參参 叢丛 吳吴 啟启 喚唤 喪丧 單单 嚮向 嚴严 囑嘱 圍围 墜坠 壇坛 夥伙 夾夹
	奮奋 婦妇 媽妈 嬌娇 嬰婴 寫写 寢寝 導导 屬属 岡冈 峽峡 巖岩 幣币 幹干 乾干 庫库 廢废 彌弥 瀰弥 徑径
	懇恳 拋抛 揮挥 損损 搖摇 攝摄 敘叙 斬斩 晝昼 暈晕 暫暂 曬晒 朧胧 棄弃 榮荣 槍枪 樓楼 歐欧 毀毁 湧涌
	滾滚 漸渐 潛潜 灣湾 爐炉 牽牵 犧牺 狹狭 猶犹 獵猎 瑤瑶 畢毕 異异 瘋疯 癡痴 皺皱 眾众 衆众 睏困 瞭了
	矇蒙 碼码 確确 礦矿 禱祷 禪禅 積积 竊窃 築筑 簽签 籤签 粵粤 糾纠 紋纹 納纳 紗纱 紹绍 絃弦 綿绵 緒绪
	緩缓 縮缩 繪绘 繼继 纏缠 罰罚 聳耸 肅肃 脈脉 腦脑 腳脚 膩腻 臨临 艦舰 莊庄 蓋盖 蔣蒋 薦荐 薩萨 藥药
	蘇苏 甦苏 虛虚 蝦虾 蠟蜡 蠻蛮 襲袭 覓觅 詢询 誇夸 誕诞 誼谊 謀谋 謙谦 譜谱 議议 豐丰 豬猪 貪贪 貴贵
	賊贼 資资 賦赋 質质 贈赠 趨趋 轟轰 辯辩 邁迈 邏逻 醜丑 釀酿 針针 釣钓 鈴铃 鉤钩 銳锐 鋒锋 鍊炼 煉炼
	鎮镇 鑰钥 閣阁 闖闯 隱隐 霧雾 頸颈 顆颗 颱台 臺台 檯台 餅饼 饒饶 騰腾 驅驱 驕骄 髒脏 鬱郁 魯鲁 鯨鲸
	鷹鹰 鹽盐 黴霉 鼕冬 齡龄 龐庞 嶄崭 燭烛 獲获 穫获 彙汇 匯汇 憑凭 擠挤 淨净 濱滨 瀾澜 瓊琼 碩硕 綺绮
	翹翘 蓮莲 蕭萧 蘿萝 螢萤 蠶蚕 謠谣 賢贤 遙遥 鄭郑 錦锦 鑽钻 韻韵 顫颤 飆飙 餘余 駕驾 鬢鬓 鴻鸿 鵑鹃
	鶯莺 鷗鸥 傑杰 偉伟 勳勋 嘯啸 壺壶 奧奥 巔巅 廈厦 徵征 惡恶 慘惨 慮虑 憤愤 懸悬 撐撑 擬拟 暉晖 曠旷
	檢检 櫻樱 欄栏 殤殇 洶汹 渾浑 滄沧 漲涨 澀涩 熾炽 瑣琐 癒愈 盞盏 磚砖 簾帘 籠笼 紐纽 絢绚 綜综 繽缤
	纖纤 羨羡 脫脱 膠胶 艷艳 豔艳 蒼苍 蔥葱 蕩荡 薑姜 蘊蕴 覽览 訴诉 詠咏 諧谐 諷讽 謂谓 譯译 譽誉 貞贞
	販贩 賜赐 賭赌 贊赞 軌轨 軒轩 輔辅 輯辑 輸输 鈔钞 鉛铅 銅铜 銘铭 鋪铺 鍋锅 鏈链 閱阅 闆板 陝陕 隸隶
	鞏巩 韌韧 頌颂 頹颓 顛颠 颯飒 飢饥 饑饥 餃饺 餵喂 駐驻 駛驶 駿骏 騷骚 驟骤 鬍胡 鬆松 鴉鸦 鴨鸭 鵝鹅
	鵬鹏 鸚鹦 鵡鹉 鹼碱 麵面 齋斋 億亿 偽伪 僞伪 尷尴 滯滞 濟济 灘滩 燙烫 獄狱 產产 疊叠 癢痒 盧卢 稅税
	窺窥 篤笃 紡纺 紮扎 絆绊 緯纬 縫缝 繃绷 纜缆 罵骂 羈羁 膚肤 舉举 艙舱 葦苇 蔔卜 蘆芦 處处 螞蚂 蟻蚁
	褲裤 訂订 訓训 託托 訝讶 詐诈 診诊 註注 詳详 諸诸 謹谨 踐践 躊踌 軀躯 軸轴 較较 輛辆 迴回 遞递 遜逊
	郵邮 醬酱 鋸锯 錘锤 錶表 鍛锻 鏟铲 鑄铸 鑑鉴 鑒鉴 隴陇 韋韦 頒颁 頰颊 顱颅 飽饱 饅馒 馮冯 駁驳 駝驼
	驢驴 鱷鳄 鴿鸽 鵲鹊 鷺鹭 齣出 幾几 穀谷 係系 繫系 準准 颳刮 鹹咸 佔占 嘗尝 並并 併并 僕仆 纔才 佈布
	製制 緻致 誌志 捨舍 闢辟 捲卷 鞦秋 韆千 剝剥 擴扩 搶抢 擋挡 擲掷 攤摊 攬揽 蔭荫 倫伦 紳绅
`

var t2s = func() map[rune]rune {
	fields := strings.Fields(t2sPairs)
	m := make(map[rune]rune, len(fields))
	for _, field := range fields {
		r := []rune(field)
		m[r[0]] = r[1]
	}
	return m
}()

var simplifier = runes.Map(func(r rune) rune {
	if s, ok := t2s[r]; ok {
		return s
	}
	return r
})

// ToSimplified converts traditional Chinese characters to their simplified forms.
// Characters without a mapping pass through unchanged.
func ToSimplified(s string) string {
	out, _, err := transform.String(simplifier, s)
	if err != nil {
		return s
	}
	return out
}

// foldTransformer compatibility-folds text, drops all nonspacing marks (Mn) and simplifies
// traditional characters. Transformer chains hold state, so one is built per call.
func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC, simplifier)
}
